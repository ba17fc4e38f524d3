package invoice

import (
	"regexp"
	"strconv"
	"time"
)

// SAP OData serializes dates as /Date(<milliseconds since epoch>)/
var sapDatePattern = regexp.MustCompile(`/Date\((\d+)\)/`)

// ConvertSAPDate converts a SAP epoch date string to YYYY-MM-DD in local
// time. Input that does not match the /Date(ms)/ pattern is returned
// unchanged, as is a matched payload that overflows int64.
func ConvertSAPDate(s string) string {
	if s == "" {
		return s
	}

	m := sapDatePattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}

	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return s
	}

	return time.UnixMilli(ms).Format("2006-01-02")
}
