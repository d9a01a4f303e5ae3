package users

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// UserControllerRoutes holds the route paths
type UserControllerRoutes struct {
	Users         string
	UserByID      string
	Login         string
	TokenValidate string
}

// UserController handles the JSON account and auth endpoints
type UserController struct {
	Debug  bool
	Logger Logger
	Repo   RepositoryManager
	Auth   Authenticator
	Routes *UserControllerRoutes
}

type UserControllerOption func(*UserController) *UserController

func WithControllerLogger(l Logger) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Logger = l
		return c
	}
}

func WithControllerDebug(debug bool) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Debug = debug
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuth(auth Authenticator) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Auth = auth
		return c
	}
}

func NewUserController(opts ...UserControllerOption) *UserController {
	c := &UserController{
		Logger: defLogger{},
		Routes: &UserControllerRoutes{
			Users:         "/users",
			UserByID:      "/users/:id",
			Login:         "/auth/login",
			TokenValidate: "/auth/token/validate",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in user controller...")
	}

	if c.Auth == nil {
		panic("Missing Authenticator in user controller...")
	}

	return c
}

// RegisterUserRoutes mounts the account and auth endpoints
func RegisterUserRoutes(app RouteRegistrar, opts ...UserControllerOption) *UserController {
	controller := NewUserController(opts...)

	app.Post(controller.Routes.Users, controller.CreateUser).
		SetName("users.create")
	app.Get(controller.Routes.Users, controller.ListUsers).
		SetName("users.list")
	app.Get(controller.Routes.UserByID, controller.ShowUser).
		SetName("users.show")

	app.Post(controller.Routes.Login, controller.Login).
		SetName("auth.login")
	app.Post(controller.Routes.TokenValidate, controller.ValidateToken).
		SetName("auth.token-validate")

	return controller
}

// CreateUserPayload is the account creation payload
type CreateUserPayload struct {
	Email     string `form:"email" json:"email"`
	Password  string `form:"password" json:"password"`
	FirstName string `form:"first_name" json:"firstName"`
	LastName  string `form:"last_name" json:"lastName"`
	Role      string `form:"role" json:"role"`
}

// Validate will validate the payload
func (r CreateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Role, validation.In(string(RoleUser), string(RoleAdmin))),
	)
}

func (a *UserController) CreateUser(ctx router.Context) error {
	payload := new(CreateUserPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("create user parse payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("create user validate payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": err.Error(),
		})
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(payload))
	}

	var created *User
	msg := CreateUserMessage{
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Role:      payload.Role,
		OnResponse: func(u *User) {
			created = u
		},
	}

	createUser := NewCreateUserHandler(a.Repo).WithLogger(a.Logger)
	if err := createUser.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("create user error", "error", err)
		return a.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, created.Public())
}

func (a *UserController) ListUsers(ctx router.Context) error {
	records, err := a.Repo.Users().ListAll(ctx.Context())
	if err != nil {
		a.Logger.Error("list users error", "error", err)
		return a.renderError(ctx, err)
	}

	views := make([]*PublicUser, 0, len(records))
	for _, record := range records {
		views = append(views, record.Public())
	}

	return ctx.JSON(router.StatusOK, views)
}

func (a *UserController) ShowUser(ctx router.Context) error {
	id := ctx.Param("id")

	record, err := a.Repo.Users().GetByID(ctx.Context(), id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ctx.JSON(router.StatusNotFound, map[string]string{
				"error": "account not found",
			})
		}
		a.Logger.Error("show user error", "error", err)
		return a.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, record.Public())
}

// LoginPayload is the credential payload
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *UserController) Login(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": err.Error(),
		})
	}

	result, err := a.Auth.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Warn("login rejected", "email", payload.Email, "error", err)
		return a.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, result)
}

// TokenValidatePayload carries the token to check
type TokenValidatePayload struct {
	Token string `form:"token" json:"token"`
}

// ValidateToken always answers 200 with a boolean; token failures never
// surface as errors here.
func (a *UserController) ValidateToken(ctx router.Context) error {
	payload := new(TokenValidatePayload)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusOK, map[string]bool{
			"valid": false,
		})
	}

	return ctx.JSON(router.StatusOK, map[string]bool{
		"valid": a.Auth.ValidateToken(payload.Token),
	})
}

// renderError maps rich error categories onto HTTP statuses.
func (a *UserController) renderError(ctx router.Context, err error) error {
	status := router.StatusInternalServerError
	message := "internal error"

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryConflict:
			status = router.StatusConflict
			message = richErr.Message
		case goerrors.CategoryNotFound:
			status = router.StatusNotFound
			message = richErr.Message
		case goerrors.CategoryAuth:
			status = router.StatusUnauthorized
			message = richErr.Message
		case goerrors.CategoryValidation:
			status = router.StatusBadRequest
			message = richErr.Message
		}

		body := map[string]string{"error": message}
		if richErr.TextCode != "" {
			body["code"] = richErr.TextCode
		}
		return ctx.JSON(status, body)
	}

	return ctx.JSON(status, map[string]string{
		"error": message,
	})
}
