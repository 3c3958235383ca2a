package content

import (
	"strconv"
	"strings"
)

// Page 描述一次分页计算的结果，页码从 1 开始。
type Page struct {
	Number     int
	PerPage    int
	Offset     int
	Total      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevNumber int
	NextNumber int
}

// Paginate 根据页码、每页条数与总数计算分页信息。
func Paginate(number, perPage, total int) Page {
	if perPage <= 0 {
		perPage = DefaultPageLimit
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage
	p := Page{
		Number:     number,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
	if number > 0 {
		p.Offset = (number - 1) * perPage
	}
	p.HasPrev = number > 1
	p.HasNext = number >= 1 && number < totalPages
	if p.HasPrev {
		p.PrevNumber = number - 1
	}
	if p.HasNext {
		p.NextNumber = number + 1
	}
	return p
}

// OutOfRange 表示页码小于 1，或在有内容的前提下超过总页数。
func (p Page) OutOfRange() bool {
	if p.Number < 1 {
		return true
	}
	return p.TotalPages > 0 && p.Number > p.TotalPages
}

// Exceeds 是严格版本：没有任何内容时页码 1 也视为越界。
func (p Page) Exceeds() bool {
	return p.Number < 1 || p.Number > p.TotalPages
}

// ParsePageParam 解析查询参数中的页码，缺失或非法时返回 1。
func ParsePageParam(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParsePathPage 解析路径中的页码，非数字时返回 false。
func ParsePathPage(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
