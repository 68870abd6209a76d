package email

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
)

type SMTPNotifier struct {
	host   string
	port   int
	from   string
	logger *zap.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(host string, port int, from string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, logger: logger, send: smtp.SendMail}
}

func (n *SMTPNotifier) NotifyFailure(_ context.Context, userEmail string, job *entity.ExtractionJob) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	jobID := job.ID.String()

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.from, userEmail, failureSubject(job), failureBody(job),
	)

	if err := n.send(addr, nil, n.from, []string{userEmail}, []byte(msg)); err != nil {
		n.logger.Error("failed to send failure notification email",
			zap.String("to", userEmail),
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("failure notification email sent",
		zap.String("to", userEmail),
		zap.String("job_id", jobID),
	)
	return nil
}

func failureSubject(job *entity.ExtractionJob) string {
	return fmt.Sprintf("Frame extraction failed [Job %s]", job.ID)
}

func failureBody(job *entity.ExtractionJob) string {
	return fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"Your frame extraction job has permanently failed after %d of %d attempts.\r\n\r\n"+
			"Job ID: %s\r\n"+
			"Video: %s\r\n"+
			"Output: %s (frames %s)\r\n"+
			"Error: %s\r\n\r\n"+
			"Please check the source video and submit the job again.\r\n\r\n"+
			"-- frametool",
		job.Attempt, job.MaxAttempts, job.ID, job.VideoKey, job.OutputName, job.Window, job.ErrorMessage,
	)
}
