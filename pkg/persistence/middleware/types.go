package middleware

import "github.com/aretw0/ergoweb/pkg/ports"

// Middleware allows wrapping a ConfigStore to add behavior.
type Middleware func(ports.ConfigStore) ports.ConfigStore
