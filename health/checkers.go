package health

import (
	"context"
	"fmt"
	"time"

	"github.com/glimte/mqlink-go/directory"
	"github.com/glimte/mqlink-go/messaging"
)

// LinkStater is the view of a queue link the checker reads.
type LinkStater interface {
	State() messaging.LifecycleState
	Stats() messaging.LifecycleStats
	QueueName() string
}

// LinkChecker reports the lifecycle state of a queue link without forcing
// resolution. An idle link that has never connected is healthy; lazily
// built handles are a design property, not a fault.
type LinkChecker struct {
	name string
	link LinkStater
}

// NewLinkChecker creates a checker reading link state snapshots.
func NewLinkChecker(name string, link LinkStater) *LinkChecker {
	return &LinkChecker{name: name, link: link}
}

func (c *LinkChecker) Name() string {
	return c.name
}

func (c *LinkChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	state := c.link.State()
	stats := c.link.Stats()

	result := CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Timestamp: start,
		Details: map[string]interface{}{
			"queue":            c.link.QueueName(),
			"connected":        state.Connection,
			"producerReady":    state.Producer,
			"consumerReady":    state.Consumer,
			"messagesSent":     stats.MessagesSent,
			"messagesReceived": stats.MessagesReceived,
			"closes":           stats.Closes,
		},
	}
	if state.Connection {
		result.Message = "link established"
	} else {
		result.Message = "link idle; handles resolve on first use"
	}
	result.Duration = time.Since(start)
	return result
}

// DirectoryChecker verifies the name registry file loads and the
// configured connection factory entry exists.
type DirectoryChecker struct {
	name        string
	path        string
	factoryName string
}

// NewDirectoryChecker creates a checker for the registry at path.
func NewDirectoryChecker(name, path string) *DirectoryChecker {
	return &DirectoryChecker{name: name, path: path, factoryName: directory.DefaultFactoryName}
}

// WithFactoryName selects a factory entry other than the default.
func (c *DirectoryChecker) WithFactoryName(factoryName string) *DirectoryChecker {
	c.factoryName = factoryName
	return c
}

func (c *DirectoryChecker) Name() string {
	return c.name
}

func (c *DirectoryChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{Name: c.name, Timestamp: start}

	reg, err := directory.Load(c.path)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = "registry unreadable"
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	if _, err := reg.FactoryURL(c.factoryName); err != nil {
		result.Status = StatusDegraded
		result.Message = fmt.Sprintf("registry loads but %q is missing", c.factoryName)
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	result.Status = StatusHealthy
	result.Message = "registry ok"
	result.Details = map[string]interface{}{
		"factories": len(reg.ConnectionFactories),
		"queues":    len(reg.Queues),
	}
	result.Duration = time.Since(start)
	return result
}
