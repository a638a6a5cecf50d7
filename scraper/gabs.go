package scraper

import "github.com/Jeffail/gabs/v2"

// Typed accessors over gabs containers. yt-dlp's info dict is too loose
// for static structs (fields appear and disappear per extractor version),
// so numeric values arrive as float64 and get narrowed here. A missing or
// mistyped field reads as nil / zero, never a panic.

func jsonString(c *gabs.Container, path ...string) string {
	if c == nil {
		return ""
	}
	if v, ok := c.Search(path...).Data().(string); ok {
		return v
	}
	return ""
}

func jsonFloat64(c *gabs.Container, path ...string) *float64 {
	if c == nil {
		return nil
	}
	if v, ok := c.Search(path...).Data().(float64); ok {
		return &v
	}
	return nil
}

func jsonFloat64OrZero(c *gabs.Container, path ...string) float64 {
	if v := jsonFloat64(c, path...); v != nil {
		return *v
	}
	return 0
}

func jsonInt64(c *gabs.Container, path ...string) *int64 {
	if v := jsonFloat64(c, path...); v != nil {
		n := int64(*v)
		return &n
	}
	return nil
}

func jsonInt64OrZero(c *gabs.Container, path ...string) int64 {
	if v := jsonInt64(c, path...); v != nil {
		return *v
	}
	return 0
}

func jsonInt(c *gabs.Container, path ...string) *int {
	if v := jsonFloat64(c, path...); v != nil {
		n := int(*v)
		return &n
	}
	return nil
}

func jsonBool(c *gabs.Container, path ...string) bool {
	if c == nil {
		return false
	}
	v, _ := c.Search(path...).Data().(bool)
	return v
}

func jsonBoolPtr(c *gabs.Container, path ...string) *bool {
	if c == nil {
		return nil
	}
	if v, ok := c.Search(path...).Data().(bool); ok {
		return &v
	}
	return nil
}

func jsonStringSlice(c *gabs.Container, path ...string) []string {
	if c == nil {
		return nil
	}
	var out []string
	for _, child := range c.Search(path...).Children() {
		if v, ok := child.Data().(string); ok {
			out = append(out, v)
		}
	}
	return out
}
