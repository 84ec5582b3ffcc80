package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/oluseyi/kycflow/internal/context"
	"github.com/oluseyi/kycflow/internal/errHandler"
	"github.com/oluseyi/kycflow/internal/models"
	"github.com/oluseyi/kycflow/internal/repository"
	"github.com/oluseyi/kycflow/internal/request"
	"github.com/oluseyi/kycflow/internal/response"
	"github.com/oluseyi/kycflow/internal/stream"
	"github.com/oluseyi/kycflow/internal/validator"
)

type KycHandler struct {
	KycFormRepo  repository.KycFormRepository
	CreditRepo   repository.CreditRepository
	ActivityRepo repository.ActivityRepository
	DB           repository.TxBeginner
	Stream       stream.StreamInterface
	Helper       HelperInterface
	ErrHandler   *errHandler.ErrorHandler
}

func NewKycHandler(handler *KycHandler) *KycHandler {
	return &KycHandler{
		KycFormRepo:  handler.KycFormRepo,
		CreditRepo:   handler.CreditRepo,
		ActivityRepo: handler.ActivityRepo,
		DB:           handler.DB,
		Stream:       handler.Stream,
		Helper:       handler.Helper,
		ErrHandler:   handler.ErrHandler,
	}
}

// HandleSubmitKycForm files a new KYC form for review. A phone number can
// only have one open form, and a confirmed phone number is terminal; a
// rejected one may submit again.
func (h *KycHandler) HandleSubmitKycForm(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PhoneNumber string              `json:"phone_number"`
		FirstName   string              `json:"first_name"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.PhoneNumber), "Phone number is required")
	input.Validator.Check(validator.Matches(input.PhoneNumber, validator.RgxPhoneNumber), "Phone number must be in international format")
	input.Validator.Check(validator.NotBlank(input.FirstName), "First name is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	pendingExists, err := h.KycFormRepo.ExistsByPhoneAndStatus(input.PhoneNumber, repository.KycStatusPending, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if pendingExists {
		message := "You currently have a pending KYC request. Our team is reviewing your information and will respond shortly."
		response.JSONErrorResponse(w, nil, message, http.StatusBadRequest, nil)
		return
	}

	confirmedExists, err := h.KycFormRepo.ExistsByPhoneAndStatus(input.PhoneNumber, repository.KycStatusConfirmed, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if confirmedExists {
		message := "Your KYC form has already been confirmed."
		response.JSONErrorResponse(w, nil, message, http.StatusBadRequest, nil)
		return
	}

	form := &models.KycForm{
		PhoneNumber: input.PhoneNumber,
		FirstName:   input.FirstName,
	}

	formID, err := h.KycFormRepo.Insert(form)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	authenticatedUser := context.ContextGetAuthenticatedUser(r)

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      authenticatedUser.ID,
			Entity:      repository.ActivityLogKycFormEntity,
			EntityId:    formID,
			Description: KycActivityLogSubmittedDescription,
		})

		if err != nil {
			log.Printf("Error logging KYC submission action: %v", err)
			return err
		}

		return nil
	})

	h.Helper.BackgroundTask(r, func() error {
		return h.produceKycEvent(KycSubmittedTopic, &KycEvent{
			PhoneNumber: input.PhoneNumber,
			FirstName:   input.FirstName,
		})
	})

	message := "KYC form submitted successfully. Our team will review it and respond within 24 hours."
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleConfirmKycForm runs the confirmation guard sequence. After the
// terminal-state guard, everything happens in one transaction: the
// conditional pending->confirmed update, the credited check and the credit
// insert either all land or none of them do. The UNIQUE constraint on
// credits.phone_number backs up the in-transaction check.
func (h *KycHandler) HandleConfirmKycForm(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PhoneNumber string              `json:"phone_number"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.PhoneNumber), "Phone number is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	confirmedExists, err := h.KycFormRepo.ExistsByPhoneAndStatus(input.PhoneNumber, repository.KycStatusConfirmed, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if confirmedExists {
		message := "This customer already has a confirmed KYC"
		response.JSONErrorResponse(w, nil, message, http.StatusBadRequest, nil)
		return
	}

	tx, err := h.DB.BeginTx(r.Context(), nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	formID, updated, err := h.KycFormRepo.UpdateStatusIfPending(input.PhoneNumber, repository.KycStatusConfirmed, tx)
	if err != nil {
		tx.Rollback()
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !updated {
		tx.Rollback()
		message := "No pending KYC form found"
		response.JSONErrorResponse(w, nil, message, http.StatusBadRequest, nil)
		return
	}

	alreadyCredited, err := h.CreditRepo.ExistsByPhoneNumber(input.PhoneNumber, tx)
	if err != nil {
		tx.Rollback()
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// roll back so the status flip never outlives a credit rejection
	if alreadyCredited {
		tx.Rollback()
		message := "Customer has already received credit"
		response.JSONErrorResponse(w, nil, message, http.StatusBadRequest, nil)
		return
	}

	credit := &models.Credit{
		PhoneNumber: input.PhoneNumber,
		Amount:      repository.CreditWelcomeAmount,
	}

	creditID, err := h.CreditRepo.Insert(credit, tx)
	if err != nil {
		tx.Rollback()
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if err := tx.Commit(); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	authenticatedUser := context.ContextGetAuthenticatedUser(r)

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      authenticatedUser.ID,
			Entity:      repository.ActivityLogKycFormEntity,
			EntityId:    formID,
			Description: KycActivityLogConfirmedDescription,
		})

		if err != nil {
			log.Printf("Error logging KYC confirmation action: %v", err)
			return err
		}

		return nil
	})

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      authenticatedUser.ID,
			Entity:      repository.ActivityLogCreditEntity,
			EntityId:    creditID,
			Description: KycActivityLogCreditIssuedDescription,
		})

		if err != nil {
			log.Printf("Error logging credit issuance action: %v", err)
			return err
		}

		return nil
	})

	h.Helper.BackgroundTask(r, func() error {
		return h.produceKycEvent(KycConfirmedTopic, &KycEvent{
			PhoneNumber: input.PhoneNumber,
			Amount:      repository.CreditWelcomeAmount,
		})
	})

	message := "KYC confirmed and 200 Naira credit issued"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleRejectKycForm moves a pending form to the rejected state. The
// customer may submit a fresh form afterwards.
func (h *KycHandler) HandleRejectKycForm(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PhoneNumber string              `json:"phone_number"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.PhoneNumber), "Phone number is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	formID, updated, err := h.KycFormRepo.UpdateStatusIfPending(input.PhoneNumber, repository.KycStatusRejected, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !updated {
		message := "KYC form does not exist or is not in pending status."
		response.JSONErrorResponse(w, nil, message, http.StatusBadRequest, nil)
		return
	}

	authenticatedUser := context.ContextGetAuthenticatedUser(r)

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      authenticatedUser.ID,
			Entity:      repository.ActivityLogKycFormEntity,
			EntityId:    formID,
			Description: KycActivityLogRejectedDescription,
		})

		if err != nil {
			log.Printf("Error logging KYC rejection action: %v", err)
			return err
		}

		return nil
	})

	h.Helper.BackgroundTask(r, func() error {
		return h.produceKycEvent(KycRejectedTopic, &KycEvent{
			PhoneNumber: input.PhoneNumber,
		})
	})

	message := "KYC form has been rejected."
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *KycHandler) produceKycEvent(topic string, event *KycEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := h.Stream.ProduceMessage(topic, string(payload)); err != nil {
		log.Printf("Error producing %s event: %v", topic, err)
		return err
	}

	return nil
}
