package natsadapter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/camslew/internal/core/domain"
)

func TestAckFor(t *testing.T) {
	assert.Equal(t, ackOK, ackFor(nil))
	assert.Equal(t, ackNak, ackFor(errors.New("connection refused")))

	rejected := fmt.Errorf("record slew s1: %w", fmt.Errorf("insert: %w: %w", domain.ErrRecordRejected, errors.New("22003")))
	assert.Equal(t, ackTerm, ackFor(rejected))
}
