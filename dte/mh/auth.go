// Package mh drives the Ministerio de Hacienda reception API: token
// acquisition and signed document transmission.
package mh

import (
	"context"
	"strings"

	goerrors "github.com/go-faster/errors"
	log "github.com/sirupsen/logrus"

	"github.com/facturasv/go-dte-client/dte"
	"github.com/facturasv/go-dte-client/dte/api"
	"github.com/facturasv/go-dte-client/dte/model"
)

var logger = log.WithField("component", "dte.mh")

type AuthService interface {
	// Authenticate exchanges API credentials for a JWT. The sandbox
	// accepts form-encoded credentials; some builds only take JSON, so
	// a failed form attempt falls back to the JSON body once.
	Authenticate(ctx context.Context, user, password string) (string, error)
}

type auth struct {
	client  api.Client
	baseURL string
}

func NewAuthService(client api.Client, mhURL string) AuthService {
	return &auth{
		client:  client,
		baseURL: strings.TrimRight(mhURL, "/"),
	}
}

func (a *auth) Authenticate(ctx context.Context, user, password string) (string, error) {

	url := a.baseURL + "/seguridad/auth"

	logger.Debug("authenticating against MH")

	res := &model.AuthResponse{}
	formErr := a.client.PostForm(ctx, url, map[string]string{
		"user": user,
		"pwd":  password,
	}, res)
	if formErr == nil {
		if token := res.BearerToken(); token != "" {
			return token, nil
		}
	}

	logger.Debugf("form auth yielded no token (err=%v), falling back to JSON body", formErr)

	res = &model.AuthResponse{}
	jsonErr := a.client.PostJSON(ctx, url, map[string]string{
		"user": user,
		"pwd":  password,
	}, res)
	if jsonErr != nil {
		return "", goerrors.Wrap(jsonErr, "mh auth")
	}

	token := res.BearerToken()
	if token == "" {
		return "", dte.ErrNoToken
	}
	return token, nil
}
