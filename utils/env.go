package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type EnvType interface {
	~string | ~int | ~bool | time.Duration
}

// GetEnv returns the value of the environment variable, or the provided
// default when it is unset or empty.
func GetEnv[T EnvType](name string, defaultValue T) T {
	envValue, ok := os.LookupEnv(name)
	if !ok || envValue == "" {
		return defaultValue
	}

	value, err := parseEnv[T](name, envValue)
	if err != nil {
		panic(err)
	}
	return value
}

// GetRequiredEnv panics when the environment variable is unset or empty.
func GetRequiredEnv[T EnvType](name string) T {
	envValue, ok := os.LookupEnv(name)
	if !ok || envValue == "" {
		panic(fmt.Sprintf("%s environment variable is required", name))
	}

	value, err := parseEnv[T](name, envValue)
	if err != nil {
		panic(err)
	}
	return value
}

func parseEnv[T EnvType](name, envValue string) (T, error) {
	var out T
	switch ptr := any(&out).(type) {
	case *string:
		*ptr = envValue
	case *int:
		intValue, err := strconv.Atoi(envValue)
		if err != nil {
			return out, fmt.Errorf(
				"environment variable %s is not valid: '%s' is not an integer", name, envValue)
		}
		*ptr = intValue
	case *bool:
		boolValue, err := strconv.ParseBool(envValue)
		if err != nil {
			return out, fmt.Errorf(
				"environment variable %s is not valid: '%s' is not a boolean", name, envValue)
		}
		*ptr = boolValue
	case *time.Duration:
		durationValue, err := time.ParseDuration(envValue)
		if err != nil {
			return out, fmt.Errorf(
				"environment variable %s is not valid: '%s' is not a duration", name, envValue)
		}
		*ptr = durationValue
	}
	return out, nil
}
