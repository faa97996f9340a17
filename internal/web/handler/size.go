package handler

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

// StandardSizes are the shirt sizes offered on the registration form
var StandardSizes = []string{"XS", "S", "M", "L", "XL", "2XL", "3XL", "Free Size"}

var errInvalidSize = errors.New("invalid size")

// formatSize turns the registration form's size fields into the stored size
// string: a standard size as-is, or a chest measurement as "รอบอก N นิ้ว".
func formatSize(sizeType, std, inch string) (string, error) {
	switch sizeType {
	case "", "std":
		if !slices.Contains(StandardSizes, std) {
			return "", errInvalidSize
		}
		return std, nil
	case "inch":
		inch = strings.TrimSpace(inch)
		v, err := strconv.ParseFloat(inch, 64)
		if err != nil || v <= 0 || v >= 100 {
			return "", errInvalidSize
		}
		return "รอบอก " + strconv.FormatFloat(v, 'f', -1, 64) + " นิ้ว", nil
	}
	return "", errInvalidSize
}
