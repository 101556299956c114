package calendar

import "fmt"

// ImageName is the background file name of block index on day.
func ImageName(day, index int) string {
	return fmt.Sprintf("day%02d_%02d.png", day, index)
}

// ParseImageName is the inverse of ImageName.
func ParseImageName(name string) (day, index int, ok bool) {
	var rest string
	n, err := fmt.Sscanf(name, "day%2d_%2d%s", &day, &index, &rest)
	if err != nil || n != 3 || rest != ".png" || day < 1 || index < 1 || index > BlocksPerDay {
		return 0, 0, false
	}
	if ImageName(day, index) != name {
		return 0, 0, false
	}
	return day, index, true
}

// ComposedName is the sequential output name of the n-th composed image.
func ComposedName(n int) string {
	return fmt.Sprintf("%03d.png", n)
}
