package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/finnvos/voxd/internal/config"
	"github.com/finnvos/voxd/internal/domain"
)

func newBareController() *Controller {
	return NewController(config.Default(), nil, nil, nil, nil, zap.NewNop())
}

func TestDispatch_CompletedReplySurvivesShutdownRace(t *testing.T) {
	// The loop answers and immediately exits, so both the reply and the
	// shutdown signal are ready when dispatch wakes up. The completed
	// command's response must win every time.
	for i := 0; i < 200; i++ {
		c := newBareController()
		go func() {
			req := <-c.requests
			req.reply <- domain.Response{Status: domain.OutcomeIdle}
			close(c.done)
		}()
		resp := c.dispatch(domain.CmdStatus)
		assert.Equal(t, domain.OutcomeIdle, resp.Status)
	}
}

func TestDispatch_AfterShutdown(t *testing.T) {
	c := newBareController()
	close(c.done)

	assert.Equal(t, domain.OutcomeBye, c.dispatch(domain.CmdQuit).Status)
	assert.Equal(t, domain.OutcomeError, c.dispatch(domain.CmdStatus).Status)
}

func TestShutdown_Coalesces(t *testing.T) {
	c := newBareController()
	c.Shutdown()
	c.Shutdown()

	select {
	case <-c.stopping:
	default:
		t.Fatal("stopping channel not closed")
	}
}
