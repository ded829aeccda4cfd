package errors

import "sync"

// Collector accumulates errors and warnings produced across a compilation.
// Soft issues are recorded as warnings and never abort the traversal; hard
// failures are recorded as errors. Safe for concurrent use.
type Collector struct {
	errors   []string
	warnings []string
	mutex    sync.RWMutex
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		errors:   make([]string, 0),
		warnings: make([]string, 0),
	}
}

// AddError records a hard failure.
func (c *Collector) AddError(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, err.Error())
}

// AddErrorString records a hard failure from a preformatted message.
func (c *Collector) AddErrorString(msg string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, msg)
}

// AddWarning records a soft, non-blocking issue.
func (c *Collector) AddWarning(msg string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.warnings = append(c.warnings, msg)
}

// Errors returns a copy of the collected errors.
func (c *Collector) Errors() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]string, len(c.errors))
	copy(result, c.errors)
	return result
}

// Warnings returns a copy of the collected warnings.
func (c *Collector) Warnings() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]string, len(c.warnings))
	copy(result, c.warnings)
	return result
}

// HasErrors reports whether any hard failure was recorded.
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errors) > 0
}

// Merge appends another collector's contents.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	errs := other.Errors()
	warns := other.Warnings()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, errs...)
	c.warnings = append(c.warnings, warns...)
}
