package alloc

import (
	"fmt"
	"strings"
)

// Policy selects where Release puts a block on the free list.
type Policy uint8

const (
	// PolicyLIFO pushes released blocks onto the head of the list.
	PolicyLIFO Policy = iota

	// PolicyAddressOrdered keeps the list sorted by header offset.
	PolicyAddressOrdered
)

// String returns the flag spelling of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyLIFO:
		return "lifo"
	case PolicyAddressOrdered:
		return "address"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy accepts the spellings produced by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lifo", "":
		return PolicyLIFO, nil
	case "address", "address-ordered", "ordered":
		return PolicyAddressOrdered, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadPolicy, s)
}

// Config defines the allocator's free-list strategy.
type Config struct {
	// Name for this configuration (shown in stats output)
	Name string

	// Policy for inserting released blocks
	Policy Policy
}

// Predefined configurations.
var (
	// ConfigLIFO: O(1) release, most recently freed block is tried first.
	ConfigLIFO = Config{
		Name:   "LIFO",
		Policy: PolicyLIFO,
	}

	// ConfigAddressOrdered: O(n) release, lowest-addressed fitting block wins.
	ConfigAddressOrdered = Config{
		Name:   "AddressOrdered",
		Policy: PolicyAddressOrdered,
	}

	// Default configuration (used if none specified).
	DefaultConfig = ConfigLIFO
)

// ConfigFor returns the predefined configuration for p.
func ConfigFor(p Policy) Config {
	if p == PolicyAddressOrdered {
		return ConfigAddressOrdered
	}
	return ConfigLIFO
}

func (c Config) validate() error {
	switch c.Policy {
	case PolicyLIFO, PolicyAddressOrdered:
		return nil
	}
	return fmt.Errorf("%w: %d", ErrBadPolicy, uint8(c.Policy))
}
