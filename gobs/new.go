// Copyright (c) 2025 BVK Chaitanya

package gobs

import (
	"fmt"
)

func NewByTypename(typename string) (any, error) {
	var v any
	switch typename {
	case "Account":
		v = new(Account)
	case "Activity":
		v = new(Activity)
	case "ServerState":
		v = new(ServerState)
	case "ServerJobState":
		v = new(ServerJobState)
	case "KeyValue":
		v = new(KeyValue)
	default:
		return nil, fmt.Errorf("unsupported type name %q", typename)
	}
	return v, nil
}
