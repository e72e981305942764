package transport

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultRetryMax     = 2
	DefaultRetryWaitMin = 200 * time.Millisecond
	DefaultRetryWaitMax = 2 * time.Second
	DefaultUserAgent    = "go-hybridauth"
)

// Options is the decoded form of the transport_options table.
type Options struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
}

func DefaultOptions() Options {
	return Options{
		Timeout:      DefaultTimeout,
		RetryMax:     DefaultRetryMax,
		RetryWaitMin: DefaultRetryWaitMin,
		RetryWaitMax: DefaultRetryWaitMax,
		UserAgent:    DefaultUserAgent,
	}
}

// ParseOptions reads transport_options. Durations accept Go duration strings
// or a number of seconds. Unknown keys are ignored.
func ParseOptions(raw map[string]any) (Options, error) {
	opts := DefaultOptions()
	for key, value := range raw {
		var err error
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "timeout":
			opts.Timeout, err = parseDuration(value)
		case "retry_max":
			opts.RetryMax, err = parseInt(value)
			if err == nil && opts.RetryMax < 0 {
				err = fmt.Errorf("must not be negative")
			}
		case "retry_wait_min":
			opts.RetryWaitMin, err = parseDuration(value)
		case "retry_wait_max":
			opts.RetryWaitMax, err = parseDuration(value)
		case "user_agent":
			opts.UserAgent = strings.TrimSpace(fmt.Sprint(value))
		}
		if err != nil {
			return Options{}, fmt.Errorf("transport: invalid %s: %w", key, err)
		}
	}
	if opts.RetryWaitMax < opts.RetryWaitMin {
		opts.RetryWaitMax = opts.RetryWaitMin
	}
	return opts, nil
}

func parseDuration(value any) (time.Duration, error) {
	switch typed := value.(type) {
	case time.Duration:
		return typed, nil
	case int:
		return time.Duration(typed) * time.Second, nil
	case int64:
		return time.Duration(typed) * time.Second, nil
	case float64:
		return time.Duration(typed * float64(time.Second)), nil
	case string:
		typed = strings.TrimSpace(typed)
		if seconds, err := strconv.ParseFloat(typed, 64); err == nil {
			return time.Duration(seconds * float64(time.Second)), nil
		}
		return time.ParseDuration(typed)
	default:
		return 0, fmt.Errorf("unsupported value %T", value)
	}
}

func parseInt(value any) (int, error) {
	switch typed := value.(type) {
	case int:
		return typed, nil
	case int64:
		return int(typed), nil
	case float64:
		return int(typed), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(typed))
	default:
		return 0, fmt.Errorf("unsupported value %T", value)
	}
}
