package shop

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	requiredMsg = "This field is required"
	mismatchMsg = "Passwords Are Not The Same. Please Check!"
)

var validate = newValidator()

// newValidator reports fields by their json names and adds notblank, which
// rejects whitespace-only strings.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// ValidationError maps form field names to a message. It is produced before
// anything is sent upstream.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// check runs the validate tags of form. labels name the fields in messages;
// unlabelled fields get the generic required message.
func check(form any, labels map[string]string) ValidationError {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return ValidationError{"form": err.Error()}
	}
	v := ValidationError{}
	for _, fe := range fes {
		v[fe.Field()] = message(fe, labels[fe.Field()])
	}
	return v
}

func message(fe validator.FieldError, label string) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s cannot be less than %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot be more than %s characters", label, fe.Param())
	case "eqfield":
		return mismatchMsg
	case "numeric":
		return label + " must be a number"
	case "number":
		return label + " must be a whole number"
	}
	if label == "" {
		return requiredMsg
	}
	return label + " is required"
}

func (v ValidationError) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

type LoginForm struct {
	Username string `json:"username" validate:"notblank,min=3,max=50"`
	Password string `json:"password" validate:"notblank"`
}

func (f LoginForm) Validate() error {
	return check(f, map[string]string{"username": "Username"}).orNil()
}

type RegistrationForm struct {
	FirstName     string `json:"firstName" validate:"notblank,min=3,max=50"`
	LastName      string `json:"lastName" validate:"notblank,min=3,max=50"`
	Username      string `json:"username" validate:"notblank"`
	Email         string `json:"email" validate:"notblank"`
	Password      string `json:"password" validate:"notblank"`
	PasswordCheck string `json:"passwordCheck" validate:"notblank,eqfield=Password"`
	Role          Role   `json:"role" validate:"oneof=customer seller"`
}

var registrationLabels = map[string]string{
	"firstName": "First Name",
	"lastName":  "Last Name",
	"username":  "Username",
	"email":     "Email",
	"role":      "User Type",
}

// Validate reports a password mismatch only once every other field is valid.
func (f RegistrationForm) Validate() error {
	v := check(f, registrationLabels)
	if len(v) > 1 && v["passwordCheck"] == mismatchMsg {
		delete(v, "passwordCheck")
	}
	return v.orNil()
}

// RegisterRequest is the upstream payload for a registration.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
}

func (f RegistrationForm) Request() RegisterRequest {
	return RegisterRequest{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Username:  f.Username,
		Email:     f.Email,
		Password:  f.Password,
		Role:      f.Role,
	}
}

type AddressForm struct {
	Telephone string `json:"telephone" validate:"notblank"`
	Address   string `json:"address" validate:"notblank"`
	City      string `json:"city" validate:"notblank"`
	State     string `json:"state" validate:"notblank"`
	Zipcode   string `json:"zipcode" validate:"notblank"`
}

func (f AddressForm) Validate() error {
	return check(f, nil).orNil()
}

// Image is an uploaded product picture.
type Image struct {
	Filename string
	Body     io.Reader
}

type ProductForm struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Price       string `json:"price" validate:"notblank,numeric"`
	StockCount  string `json:"stockCount" validate:"notblank,number"`
	Image       *Image `json:"-"`
}

var productLabels = map[string]string{"price": "Price", "stockCount": "Stock count"}

// Validate checks the form; the image is mandatory only when creating.
func (f ProductForm) Validate(creating bool) error {
	v := check(f, productLabels)
	if creating && f.Image == nil {
		if v == nil {
			v = ValidationError{}
		}
		v["image"] = requiredMsg
	}
	return v.orNil()
}

type FeedbackForm struct {
	Product int64  `json:"product"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"notblank"`
}

func (f FeedbackForm) Validate() error {
	if len(check(f, nil)) > 0 {
		return ValidationError{"feedback": "Please enter your rating and comment."}
	}
	return nil
}
