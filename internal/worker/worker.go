package worker

import (
	"context"

	"github.com/oluseyi/kycflow/internal/repository"
	"github.com/oluseyi/kycflow/internal/smtp"
	"github.com/oluseyi/kycflow/internal/stream"
)

type Worker struct {
	KafkaStream *stream.KafkaStream
	DB          repository.Database
	Mailer      smtp.MailerInterface
	Helper      HelperInterface
	Ctx         context.Context
}

// HelperInterface is the slice of helper.HelperRepository the workers use.
type HelperInterface interface {
	NewEmailData() map[string]any
	FormatAmount(amount float64) string
}

const (
	// kycConfirmedGroupID is used for workers that take action whenever a KYC form was confirmed
	kycConfirmedGroupID = "kyc-confirmed-group"

	// kycRejectedGroupID is used for workers that take action whenever a KYC form was rejected
	kycRejectedGroupID = "kyc-rejected-group"
)

// Our workers typically need access to database and kafka event stream
// worker-specific dependency can be passed as argument to the worker
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		DB:          wk.DB,
		Mailer:      wk.Mailer,
		Helper:      wk.Helper,
		Ctx:         wk.Ctx,
	}
}
