package users

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// CreateUserMessage carries the attributes for a new account. Role is
// optional and defaults to USER; UseHashid derives a deterministic id from
// the email instead of a random one.
type CreateUserMessage struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       string `json:"role"`
	UseHashid  bool
	OnResponse func(*User)
}

func (e CreateUserMessage) Type() string { return "user.create" }

// Validate will run validation rules
func (e CreateUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(
			&e.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&e.Password,
			validation.Required,
			validation.Length(8, 100),
		),
		validation.Field(&e.FirstName, validation.Length(1, 200)),
		validation.Field(&e.LastName, validation.Length(1, 200)),
		validation.Field(
			&e.Role,
			validation.In(string(RoleUser), string(RoleAdmin)),
		),
	)
}

// CreateUserHandler performs the transactional account creation
type CreateUserHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewCreateUserHandler(repo RepositoryManager) *CreateUserHandler {
	return &CreateUserHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *CreateUserHandler) WithLogger(logger Logger) *CreateUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *CreateUserHandler) Execute(ctx context.Context, event CreateUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateUserHandler) execute(ctx context.Context, event CreateUserMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user payload")
	}

	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.FirstName = event.FirstName
		user.LastName = event.LastName
		user.Role = UserRole(event.Role)
		if event.UseHashid {
			if id, err := hashid.NewUUID(NormalizeEmail(event.Email)); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user creation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}
