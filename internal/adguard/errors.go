package adguard

import "fmt"

// FetchError signals a failed rewrite list request. Status and Body are set
// when the server rejected the request, Err when the transport failed.
type FetchError struct {
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("list rewrites on %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("list rewrites on %s: status=%d body=%q", e.URL, e.Status, e.Body)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AddError signals a rejected rewrite creation for a single rule.
type AddError struct {
	URL    string
	Rule   Rewrite
	Status int
	Body   string
	Err    error
}

func (e *AddError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("add rewrite %s on %s: %v", e.Rule, e.URL, e.Err)
	}
	return fmt.Sprintf("add rewrite %s on %s: status=%d body=%q", e.Rule, e.URL, e.Status, e.Body)
}

func (e *AddError) Unwrap() error { return e.Err }

// DeleteError signals a rejected rewrite removal for a single rule.
type DeleteError struct {
	URL    string
	Rule   Rewrite
	Status int
	Body   string
	Err    error
}

func (e *DeleteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delete rewrite %s on %s: %v", e.Rule, e.URL, e.Err)
	}
	return fmt.Sprintf("delete rewrite %s on %s: status=%d body=%q", e.Rule, e.URL, e.Status, e.Body)
}

func (e *DeleteError) Unwrap() error { return e.Err }
