package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/mailhelper/pkg/mailer"
)

// SelfTestTaskName is the job name of SelfTestTask.
const SelfTestTaskName = "mailhelper:self_test"

// ErrNoTestAddress is returned when the self test has no address to mail.
var ErrNoTestAddress = errors.New("tasks: self test address is empty")

// TestSender is the part of *mailer.Mailer the self test uses.
type TestSender interface {
	SendTest(ctx context.Context, to string) ([]mailer.Result, error)
}

// SelfTestTask sends the built-in test email to a fixed address on a schedule.
// A failed send fails the job.
type SelfTestTask struct {
	mailer   TestSender
	address  string
	schedule string
}

// NewSelfTestTask creates the task. schedule is a cron expression or descriptor.
func NewSelfTestTask(m TestSender, address, schedule string) *SelfTestTask {
	return &SelfTestTask{mailer: m, address: address, schedule: schedule}
}

// Name implements the scheduled task contract.
func (t *SelfTestTask) Name() string { return SelfTestTaskName }

// Schedule implements the scheduled task contract.
func (t *SelfTestTask) Schedule() string { return t.schedule }

// Handle implements the scheduled task contract.
func (t *SelfTestTask) Handle(ctx context.Context) error {
	if t.address == "" {
		return ErrNoTestAddress
	}
	if _, err := t.mailer.SendTest(ctx, t.address); err != nil {
		return fmt.Errorf("tasks: self test to %s: %w", t.address, err)
	}
	return nil
}
