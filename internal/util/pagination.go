package util

import (
	"fmt"
	"math"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePage reads page and size query values. Empty values take the
// defaults; anything else must be an integer in range. page*size must fit
// in an int so offsets never wrap.
func ParsePage(pageRaw, sizeRaw string) (page, size int, err error) {
	page, err = parsePositive("page", pageRaw, 1)
	if err != nil {
		return 0, 0, err
	}
	size, err = parsePositive("size", sizeRaw, DefaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if size > MaxPageSize {
		return 0, 0, fmt.Errorf("size must not exceed %d", MaxPageSize)
	}
	if page > math.MaxInt/size {
		return 0, 0, fmt.Errorf("page must not exceed %d", math.MaxInt/size)
	}
	return page, size, nil
}

func parsePositive(name, raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < 1 {
		return 0, fmt.Errorf("%s must be at least 1", name)
	}
	return v, nil
}

func Calculate(page, size int) (offset int, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}
