package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNewCollector_RegistersAllMetrics はCollectorのメトリクスがレジストリに登録されることを検証する。
func TestNewCollector_RegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("GET", "/api/employees", 200, 10*time.Millisecond)
	c.RecordLogin(true)
	c.RecordRateLimited("general")
	c.RecordEmployeeWrite("create")

	count, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	// requests, duration, login, rate_limited, employee_writes
	if count != 5 {
		t.Errorf("metric series = %d, want 5", count)
	}
}

// TestRecordHTTPRequest_LabelsByRouteAndStatus はルートとステータスコード別に集計されることを検証する。
func TestRecordHTTPRequest_LabelsByRouteAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("GET", "/api/employees/{id}", 200, time.Millisecond)
	c.RecordHTTPRequest("GET", "/api/employees/{id}", 200, time.Millisecond)
	c.RecordHTTPRequest("GET", "/api/employees/{id}", 404, time.Millisecond)

	if got := testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/employees/{id}", "200")); got != 2 {
		t.Errorf("200 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/employees/{id}", "404")); got != 1 {
		t.Errorf("404 count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.httpDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

// TestRecordLogin_SeparatesResults はログイン成功と失敗が別に集計されることを検証する。
func TestRecordLogin_SeparatesResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(true)
	c.RecordLogin(false)
	c.RecordLogin(false)

	if got := testutil.ToFloat64(c.logins.WithLabelValues("success")); got != 1 {
		t.Errorf("success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.logins.WithLabelValues("failure")); got != 2 {
		t.Errorf("failure = %v, want 2", got)
	}
}

// TestRecordRateLimitedAndEmployeeWrite はラベル別カウンタが増加することを検証する。
func TestRecordRateLimitedAndEmployeeWrite(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRateLimited("write")
	c.RecordEmployeeWrite("update")
	c.RecordEmployeeWrite("update")
	c.RecordEmployeeWrite("delete")

	if got := testutil.ToFloat64(c.rateLimited.WithLabelValues("write")); got != 1 {
		t.Errorf("rate_limited{write} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.employeeWrites.WithLabelValues("update")); got != 2 {
		t.Errorf("employee_writes{update} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.employeeWrites.WithLabelValues("delete")); got != 1 {
		t.Errorf("employee_writes{delete} = %v, want 1", got)
	}
}

// TestNewCollector_DuplicateRegistrationPanics は同じレジストリへの二重登録でpanicすることを検証する。
func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = NewCollector(reg)
}
