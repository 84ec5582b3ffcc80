package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/oluseyi/kycflow/internal/config"
	"github.com/oluseyi/kycflow/internal/errHandler"
	"github.com/oluseyi/kycflow/internal/models"
	"github.com/oluseyi/kycflow/internal/repository"
	"github.com/oluseyi/kycflow/internal/request"
	"github.com/oluseyi/kycflow/internal/response"
	"github.com/oluseyi/kycflow/internal/smtp"
	"github.com/oluseyi/kycflow/internal/validator"

	"github.com/cradoe/gopass"
)

const (
	// failedLoginWindow is how long a streak of failed logins is remembered.
	failedLoginWindow = 15 * time.Minute

	// maxFailedLogins locks the account when reached within the window.
	maxFailedLogins = 3
)

// The same message must come back for an unknown email and a wrong password,
// so a caller cannot probe which addresses have accounts.
const incorrectCredentialsMessage = "Incorrect email or password"

const accountLockedMessage = "Account has been locked. Please contact support"

type AuthHandler struct {
	UserRepo      repository.UserRepository
	ActivityRepo  repository.ActivityRepository
	LoginAttempts LoginAttemptStore
	Helper        HelperInterface
	Mailer        smtp.MailerInterface
	Config        *config.Config
	ErrHandler    *errHandler.ErrorHandler
}

func NewAuthHandler(handler *AuthHandler) *AuthHandler {
	return &AuthHandler{
		UserRepo:      handler.UserRepo,
		ActivityRepo:  handler.ActivityRepo,
		LoginAttempts: handler.LoginAttempts,
		Helper:        handler.Helper,
		Mailer:        handler.Mailer,
		Config:        handler.Config,
		ErrHandler:    handler.ErrHandler,
	}
}

// HandleSignUp registers a regular customer account.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	h.registerUser(w, r, repository.UserRoleUser)
}

// HandleSignUpAdmin registers an account that can review KYC forms.
func (h *AuthHandler) HandleSignUpAdmin(w http.ResponseWriter, r *http.Request) {
	h.registerUser(w, r, repository.UserRoleAdmin)
}

// New user registration involves input validation and checking that records
// do not already exist for the unique fields (email and phone number).
// A signed token is issued right away so the client can continue without a
// separate login round trip.
func (h *AuthHandler) registerUser(w http.ResponseWriter, r *http.Request, role string) {
	var input struct {
		Email       string              `json:"email"`
		Password    string              `json:"password"`
		FirstName   string              `json:"first_name"`
		LastName    string              `json:"last_name"`
		PhoneNumber string              `json:"phone_number"`
		Gender      string              `json:"gender"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	// the Validate function returns a slice of errors if the password does
	// not meet the minimum requirements
	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	_, found, err := h.UserRepo.GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	// we want to make sure no two users have the same email
	input.Validator.Check(!found, "User with this email already exists.")

	input.Validator.Check(validator.NotBlank(input.FirstName), "First name is required")
	input.Validator.Check(validator.NotBlank(input.LastName), "Last name is required")
	input.Validator.Check(validator.NotBlank(input.Gender), "Gender is required")

	input.Validator.Check(validator.NotBlank(input.PhoneNumber), "Phone number is required")
	input.Validator.Check(validator.Matches(input.PhoneNumber, validator.RgxPhoneNumber), "Phone number must be in international format")

	// we want to make sure no two users have the same phone number
	phoneTaken, err := h.UserRepo.CheckIfPhoneNumberExist(input.PhoneNumber)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	input.Validator.Check(!phoneTaken, "User with this phone number already exists.")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	createdUser := &models.User{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		PhoneNumber:    input.PhoneNumber,
		Gender:         input.Gender,
		Role:           role,
		HashedPassword: hashedPassword,
	}

	userID, err := h.UserRepo.Insert(createdUser)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	createdUser.ID = userID

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      userID,
			Entity:      repository.ActivityLogUserEntity,
			EntityId:    userID,
			Description: UserActivityLogRegistrationDescription,
		})

		if err != nil {
			log.Printf("Error logging user registration action: %v", err)
			return err
		}

		return nil
	})

	h.Helper.BackgroundTask(r, func() error {
		emailData := h.Helper.NewEmailData()
		emailData["Name"] = createdUser.FirstName + " " + createdUser.LastName

		err := h.Mailer.Send(createdUser.Email, emailData, "welcome.tmpl")
		if err != nil {
			log.Printf("Error sending welcome email: %v", err)
			return err
		}

		return nil
	})

	token, expiry, err := generateAuthToken(h.Config, createdUser)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"auth_token":   token,
		"token_expiry": expiry.Format(time.RFC3339),
	}

	message := "Signup successful"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.NotBlank(input.Password), "Password is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user, found, err := h.UserRepo.GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		response.JSONErrorResponse(w, nil, incorrectCredentialsMessage, http.StatusBadRequest, nil)
		return
	}

	passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, user.HashedPassword)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !passwordMatches {
		h.Helper.BackgroundTask(r, func() error {
			_, err := h.ActivityRepo.Insert(&models.ActivityLog{
				UserID:      user.ID,
				Entity:      repository.ActivityLogUserEntity,
				EntityId:    user.ID,
				Description: UserActivityLogFailedLoginDescription,
			})

			if err != nil {
				log.Printf("Error logging failed login action: %v", err)
				return err
			}

			return nil
		})

		count, err := h.LoginAttempts.Increment("failed_login:"+user.ID, failedLoginWindow)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		// lock the account after 3 consecutive failed attempts
		if count >= maxFailedLogins {
			h.Helper.BackgroundTask(r, func() error {
				err := h.UserRepo.Lock(user.ID)
				if err != nil {
					log.Printf("Error locking account due to failed login action: %v", err)
					return err
				}

				return nil
			})

			h.Helper.BackgroundTask(r, func() error {
				_, err := h.ActivityRepo.Insert(&models.ActivityLog{
					UserID:      user.ID,
					Entity:      repository.ActivityLogUserEntity,
					EntityId:    user.ID,
					Description: UserActivityLogLockedAccountDescription,
				})

				if err != nil {
					log.Printf("Error logging account lock action: %v", err)
					return err
				}

				return nil
			})

			response.JSONErrorResponse(w, nil, accountLockedMessage, http.StatusForbidden, nil)
			return
		}

		response.JSONErrorResponse(w, nil, incorrectCredentialsMessage, http.StatusBadRequest, nil)
		return
	}

	// check that account is active
	if user.Status != repository.UserAccountActiveStatus {
		response.JSONErrorResponse(w, nil, accountLockedMessage, http.StatusForbidden, nil)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		if err := h.LoginAttempts.Delete("failed_login:" + user.ID); err != nil {
			log.Printf("Error resetting failed login counter: %v", err)
			return err
		}

		return nil
	})

	h.Helper.BackgroundTask(r, func() error {
		if err := h.UserRepo.UpdateLastLogin(user.ID); err != nil {
			log.Printf("Error updating last login time: %v", err)
			return err
		}

		return nil
	})

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      user.ID,
			Entity:      repository.ActivityLogUserEntity,
			EntityId:    user.ID,
			Description: UserActivityLogLoginDescription,
		})

		if err != nil {
			log.Printf("Error logging successful login action: %v", err)
			return err
		}

		return nil
	})

	token, expiry, err := generateAuthToken(h.Config, user)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"auth_token":   token,
		"token_expiry": expiry.Format(time.RFC3339),
		"user": map[string]any{
			"id":           user.ID,
			"first_name":   user.FirstName,
			"last_name":    user.LastName,
			"email":        user.Email,
			"phone_number": user.PhoneNumber,
		},
	}

	message := "Login successful"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
