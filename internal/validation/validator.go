package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = New()
}

// New returns a validator with the media_url and safe_name rules registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("media_url", validateMediaURL)
	_ = v.RegisterValidation("safe_name", validateSafeName)
	return v
}

// ValidateMediaURL checks that u is an absolute http(s) URL pointing at a public host.
func ValidateMediaURL(u string) error {
	if err := validate.Var(u, "required,media_url"); err != nil {
		return fmt.Errorf("invalid URL %q: %w", u, err)
	}
	return nil
}

// ValidateName checks that name addresses a single entry of the download directory.
func ValidateName(name string) error {
	if err := validate.Var(name, "required,safe_name"); err != nil {
		return fmt.Errorf("invalid name %q: %w", name, err)
	}
	return nil
}

func validateMediaURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	if u.Host == "" {
		return false
	}

	host := u.Hostname()

	forbiddenHosts := []string{
		"localhost",
		"0.0.0.0",
		"169.254.169.254",
	}

	for _, forbidden := range forbiddenHosts {
		if strings.EqualFold(host, forbidden) {
			return false
		}
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return false
		}
	}

	return true
}

func validateSafeName(fl validator.FieldLevel) bool {
	name := fl.Field().String()

	if name == "" || name == "." || name == ".." {
		return false
	}

	return !strings.ContainsAny(name, "/\\\x00")
}
