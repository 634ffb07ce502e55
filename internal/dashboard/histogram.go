package dashboard

import (
	"sort"
	"strconv"

	"github.com/hitoshi/ems/internal/model"
)

// SalaryBoundaries は給与ヒストグラムのバケット境界。
// バケットiは[SalaryBoundaries[i], SalaryBoundaries[i+1])を表し、
// 最後の境界以上は「Above 200k」に入る。
var SalaryBoundaries = []float64{0, 30000, 50000, 75000, 100000, 150000, 200000}

// OverflowBucket は最上位バケットのラベル。
const OverflowBucket = "Above 200k"

// SalaryBucket はヒストグラムの1バケット。
type SalaryBucket struct {
	Label string   `json:"range"`
	Min   float64  `json:"min"`
	Max   *float64 `json:"max"`
	Count int      `json:"count"`
}

// BucketIndex は給与が属するバケットの添字を返す。
// 最後のバケット（len(SalaryBoundaries)-1）はオーバーフロー。
// 負の給与はストアで拒否されるが、入力された場合は先頭バケットに入れる。
func BucketIndex(salary float64) int {
	// salaryより大きい最初の境界の1つ手前がバケット
	i := sort.Search(len(SalaryBoundaries), func(i int) bool { return SalaryBoundaries[i] > salary })
	if i == 0 {
		return 0
	}
	return i - 1
}

// SalaryHistogram は給与ごとの件数をバケットに振り分ける。
// 件数0のバケットも含めてすべて返すため、結果は常に全体の分割になる。
func SalaryHistogram(counts []model.SalaryCount) []SalaryBucket {
	n := len(SalaryBoundaries)
	buckets := make([]SalaryBucket, n)
	for i := 0; i < n-1; i++ {
		upper := SalaryBoundaries[i+1]
		buckets[i] = SalaryBucket{
			Label: formatBoundary(SalaryBoundaries[i]),
			Min:   SalaryBoundaries[i],
			Max:   &upper,
		}
	}
	buckets[n-1] = SalaryBucket{Label: OverflowBucket, Min: SalaryBoundaries[n-1]}

	for _, c := range counts {
		buckets[BucketIndex(c.Salary)].Count += c.Count
	}
	return buckets
}

// formatBoundary は境界値を整数表記のラベルにする。
func formatBoundary(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
