package testdata

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// uniqueSuffix is the Unix time plus a random fragment, so calls within the
// same second (or from parallel test processes) still differ.
func uniqueSuffix() string {
	return fmt.Sprintf("%d_%s", time.Now().Unix(), uuid.New().String()[:8])
}

// UniqueName appends a unique suffix to base, for entities such as
// departments or projects that the application requires to be distinct.
func UniqueName(base string) string {
	return base + "_" + uniqueSuffix()
}

// UniqueEmail inserts a unique suffix before the domain of base. A base
// without a domain is treated as the local part.
func UniqueEmail(base string) string {
	local, domain, ok := strings.Cut(base, "@")
	if !ok {
		return local + "_" + uniqueSuffix()
	}
	return local + "_" + uniqueSuffix() + "@" + domain
}
