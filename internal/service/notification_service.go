package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	apperrors "medscan/internal/errors"
	"medscan/internal/metrics"
	"medscan/internal/model"
	"medscan/internal/notify"
	"medscan/internal/report"
)

const (
	channelSMS   = "sms"
	channelEmail = "email"

	smsTemplate       = "MedScan Update: Dear %s, your report for %s is ready. Please check your email."
	emailSubject      = "Medical Report: %s"
	emailBodyTemplate = "Dear Patient,\n\nPlease find attached your diagnostic report for %s.\n\nBest regards,\nMedScan Pro Team"

	msgSMSSimulated = "Simulation SMS Sent (Configure Twilio for real SMS)"
	msgSMSSent      = "SMS Sent Successfully"
	msgEmailSent    = "Email Sent Successfully!"
)

// Result is the outcome of a successful notification.
type Result struct {
	Message string `json:"message"`
	// Simulated is true when no transport was contacted.
	Simulated bool `json:"simulated"`
}

// EmailStage is a state of the email report pipeline.
type EmailStage string

const (
	StageStart                  EmailStage = "START"
	StagePatientLookedUp        EmailStage = "PATIENT_LOOKED_UP"
	StageDocumentRendered       EmailStage = "DOCUMENT_RENDERED"
	StageMessageComposed        EmailStage = "MESSAGE_COMPOSED"
	StageTransportAuthenticated EmailStage = "TRANSPORT_AUTHENTICATED"
	StageSent                   EmailStage = "SENT"
	StageFailed                 EmailStage = "FAILED"
)

// PipelineError reports a failed email pipeline. Stage is the last state
// reached before the failure.
type PipelineError struct {
	Stage EmailStage
	Err   error
}

func (e *PipelineError) Error() string {
	return e.Err.Error()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ReportRenderer renders a patient's report.
type ReportRenderer interface {
	Render(patient *model.PatientRecord) (*report.Document, error)
}

// ReportArchiver keeps a copy of sent reports.
type ReportArchiver interface {
	Store(ctx context.Context, patientID, name string, data []byte) (string, error)
}

// NotificationService sends SMS and emailed reports to patients.
type NotificationService interface {
	SendSMS(ctx context.Context, patientID, phone string) (*Result, error)
	SendEmail(ctx context.Context, patientID, recipient string) (*Result, error)
}

type notificationService struct {
	patients PatientService
	audit    AuditService
	renderer ReportRenderer
	mail     notify.MailTransport
	sms      notify.SMSTransport
	archive  ReportArchiver
	mailFrom string
	logger   zerolog.Logger
}

// NotificationOption customizes the notification service.
type NotificationOption func(*notificationService)

// WithReportArchive stores every successfully emailed report.
func WithReportArchive(a ReportArchiver) NotificationOption {
	return func(s *notificationService) { s.archive = a }
}

// NewNotificationService creates the dispatcher. A nil sms transport puts SMS
// into simulation mode.
func NewNotificationService(
	patients PatientService,
	audit AuditService,
	renderer ReportRenderer,
	mail notify.MailTransport,
	sms notify.SMSTransport,
	mailFrom string,
	logger zerolog.Logger,
	opts ...NotificationOption,
) NotificationService {
	s := &notificationService{
		patients: patients,
		audit:    audit,
		renderer: renderer,
		mail:     mail,
		sms:      sms,
		mailFrom: mailFrom,
		logger:   logger.With().Str("component", "notification").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *notificationService) SendSMS(ctx context.Context, patientID, phone string) (*Result, error) {
	patient, err := s.patients.FindByID(ctx, patientID)
	if err != nil {
		metrics.Notifications.WithLabelValues(channelSMS, metrics.OutcomeFailed).Inc()
		return nil, err
	}
	body := fmt.Sprintf(smsTemplate, patient.Name, patient.Diag)

	if s.sms == nil {
		s.logger.Warn().Str("to", phone).Str("body", body).Msg("simulated sms")
		s.audit.Append(ctx, model.AuditActionSMS, fmt.Sprintf("Simulated SMS sent to %s", phone))
		metrics.Notifications.WithLabelValues(channelSMS, metrics.OutcomeSimulated).Inc()
		return &Result{Message: msgSMSSimulated, Simulated: true}, nil
	}

	if err := s.sms.SendSMS(ctx, phone, body); err != nil {
		metrics.Notifications.WithLabelValues(channelSMS, metrics.OutcomeFailed).Inc()
		s.logger.Error().Err(err).Str("patient_id", patientID).Msg("sms send failed")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTransport, err)
	}

	s.audit.Append(ctx, model.AuditActionSMS, fmt.Sprintf("SMS sent to %s", phone))
	metrics.Notifications.WithLabelValues(channelSMS, metrics.OutcomeSent).Inc()
	return &Result{Message: msgSMSSent}, nil
}

// SendEmail runs START -> PATIENT_LOOKED_UP -> DOCUMENT_RENDERED ->
// MESSAGE_COMPOSED -> TRANSPORT_AUTHENTICATED -> SENT. Any failure ends the
// pipeline without an audit entry.
func (s *notificationService) SendEmail(ctx context.Context, patientID, recipient string) (*Result, error) {
	stage := StageStart
	log := s.logger.With().Str("patient_id", patientID).Str("to", recipient).Logger()

	fail := func(err error) (*Result, error) {
		metrics.Notifications.WithLabelValues(channelEmail, metrics.OutcomeFailed).Inc()
		log.Error().Err(err).Str("stage", string(stage)).Str("state", string(StageFailed)).Msg("email pipeline failed")
		return nil, &PipelineError{Stage: stage, Err: err}
	}

	patient, err := s.patients.FindByID(ctx, patientID)
	if err != nil {
		return fail(err)
	}
	stage = StagePatientLookedUp

	doc, err := s.renderer.Render(patient)
	if err != nil {
		if !errors.Is(err, apperrors.ErrRender) {
			err = fmt.Errorf("%w: %w", apperrors.ErrRender, err)
		}
		return fail(err)
	}
	stage = StageDocumentRendered

	email := &notify.Email{
		From:    s.mailFrom,
		To:      recipient,
		Subject: fmt.Sprintf(emailSubject, patient.Name),
		Body:    fmt.Sprintf(emailBodyTemplate, patient.Diag),
		Attachments: []notify.Attachment{
			{Name: doc.Name, ContentType: doc.ContentType, Data: doc.Data},
		},
	}
	stage = StageMessageComposed

	if s.mail == nil {
		return fail(fmt.Errorf("%w: mail transport not configured", apperrors.ErrTransport))
	}
	session, err := s.mail.Open(ctx)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", apperrors.ErrTransport, err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("mail session close failed")
		}
	}()
	stage = StageTransportAuthenticated

	if err := session.Send(ctx, email); err != nil {
		return fail(fmt.Errorf("%w: %w", apperrors.ErrTransport, err))
	}
	stage = StageSent
	log.Info().Str("state", string(stage)).Msg("report emailed")

	s.audit.Append(ctx, model.AuditActionEmail, fmt.Sprintf("Report sent to %s", recipient))
	metrics.Notifications.WithLabelValues(channelEmail, metrics.OutcomeSent).Inc()

	if s.archive != nil {
		if key, err := s.archive.Store(ctx, patient.ID, doc.Name, doc.Data); err != nil {
			log.Warn().Err(err).Msg("report archive failed")
		} else {
			log.Debug().Str("key", key).Msg("report archived")
		}
	}

	return &Result{Message: msgEmailSent}, nil
}
