// Package guard forces test mode before any package init can start
// runtime services. Import it for side effects from integration-style
// tests.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("GATEHOUSE_TEST_MODE") == "" {
			_ = os.Setenv("GATEHOUSE_TEST_MODE", "1")
		}
	})
}
