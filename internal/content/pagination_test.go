package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPaginate(t *testing.T) {
	testCases := []struct {
		name    string
		number  int
		perPage int
		total   int
		want    Page
	}{
		{
			name: "first page", number: 1, perPage: 5, total: 12,
			want: Page{Number: 1, PerPage: 5, Offset: 0, Total: 12, TotalPages: 3, HasNext: true, NextNumber: 2},
		},
		{
			name: "middle page", number: 2, perPage: 5, total: 12,
			want: Page{Number: 2, PerPage: 5, Offset: 5, Total: 12, TotalPages: 3, HasPrev: true, HasNext: true, PrevNumber: 1, NextNumber: 3},
		},
		{
			name: "last page", number: 3, perPage: 5, total: 12,
			want: Page{Number: 3, PerPage: 5, Offset: 10, Total: 12, TotalPages: 3, HasPrev: true, PrevNumber: 2},
		},
		{
			name: "exact multiple", number: 1, perPage: 10, total: 10,
			want: Page{Number: 1, PerPage: 10, Offset: 0, Total: 10, TotalPages: 1},
		},
		{
			name: "empty", number: 1, perPage: 10, total: 0,
			want: Page{Number: 1, PerPage: 10, Offset: 0, Total: 0, TotalPages: 0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Paginate(tc.number, tc.perPage, tc.total)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("分页结果不符 (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPageOutOfRange(t *testing.T) {
	if Paginate(1, 5, 0).OutOfRange() {
		t.Fatalf("无内容时第 1 页应渲染空状态而非越界")
	}
	if !Paginate(4, 5, 12).OutOfRange() {
		t.Fatalf("超过总页数应越界")
	}
	if !Paginate(0, 5, 12).OutOfRange() {
		t.Fatalf("页码小于 1 应越界")
	}
	if !Paginate(1, 10, 0).Exceeds() {
		t.Fatalf("严格模式下无内容的第 1 页应越界")
	}
	if Paginate(2, 10, 11).Exceeds() {
		t.Fatalf("第 2 页在 11 条内容时有效")
	}
}

func TestParsePageParam(t *testing.T) {
	cases := map[string]int{"": 1, "3": 3, " 2 ": 2, "0": 1, "-4": 1, "abc": 1}
	for raw, want := range cases {
		if got := ParsePageParam(raw); got != want {
			t.Fatalf("ParsePageParam(%q) = %d, want %d", raw, got, want)
		}
	}
	if _, ok := ParsePathPage("two"); ok {
		t.Fatalf("非数字路径页码应失败")
	}
	if n, ok := ParsePathPage("0"); !ok || n != 0 {
		t.Fatalf("数字路径页码应原样返回")
	}
}
