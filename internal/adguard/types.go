package adguard

// Rewrite is a single DNS rewrite record managed by an AdGuard Home
// instance.
type Rewrite struct {
	// Domain is the domain pattern the rewrite applies to.
	Domain string `json:"domain" yaml:"domain"`

	// Answer is the IP address or canonical name returned for Domain.
	Answer string `json:"answer" yaml:"answer"`
}

// Equal reports whether both fields match exactly.
func (r Rewrite) Equal(other Rewrite) bool {
	return r == other
}

func (r Rewrite) String() string {
	return r.Domain + " -> " + r.Answer
}
