package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/facturasv/go-dte-client/dte/util"
)

// Client is the low-level HTTP surface shared by the firmador and MH
// services. Endpoint URLs are absolute: they come from the parameter
// store, not from a compiled-in environment.
type Client interface {
	PostJSON(ctx context.Context, url string, body, result interface{}) error
	PostJSONAuth(ctx context.Context, url, token string, body, result interface{}) error
	PostForm(ctx context.Context, url string, data map[string]string, result interface{}) error
}

type client struct {
	rest *resty.Client
}

func New(timeout time.Duration) Client {
	restyClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &client{rest: restyClient}
}

func (c *client) PostJSON(ctx context.Context, url string, body, result interface{}) error {

	r := c.rest.R().SetContext(ctx)
	if util.HttpTraceEnabled() {
		r.EnableTrace()
	}

	resp, err := r.
		SetBody(body).
		SetResult(result).
		Post(url)

	printTraceInfo(url, err, resp)
	return checkError(resp, err)
}

func (c *client) PostJSONAuth(ctx context.Context, url, token string, body, result interface{}) error {

	r := c.rest.R().SetContext(ctx)
	if util.HttpTraceEnabled() {
		r.EnableTrace()
	}

	resp, err := r.
		SetBody(body).
		SetResult(result).
		SetHeader("Authorization", "Bearer "+token).
		Post(url)

	printTraceInfo(url, err, resp)
	return checkError(resp, err)
}

func (c *client) PostForm(ctx context.Context, url string, data map[string]string, result interface{}) error {

	r := c.rest.R().SetContext(ctx)
	if util.HttpTraceEnabled() {
		r.EnableTrace()
	}

	resp, err := r.
		SetFormData(data).
		SetResult(result).
		Post(url)

	printTraceInfo(url, err, resp)
	return checkError(resp, err)
}

func checkError(resp *resty.Response, err error) error {
	if resp != nil && resp.IsError() {

		body := resp.String()
		var errorMap map[string]any
		if body != "" {
			_ = json.Unmarshal([]byte(body), &errorMap)
		}

		return &RequestError{
			StatusCode:   resp.StatusCode(),
			Err:          err,
			Body:         body,
			ErrorDetails: errorMap,
		}
	}
	return err
}

func printTraceInfo(url string, err error, resp *resty.Response) {

	if !util.HttpTraceEnabled() || resp == nil {
		return
	}

	fmt.Println("Response Info:")
	fmt.Println("  URL        :", url)
	fmt.Println("  Error      :", err)
	fmt.Println("  Status Code:", resp.StatusCode())
	fmt.Println("  Status     :", resp.Status())
	fmt.Println("  Time       :", resp.Time())
	fmt.Println("  Received At:", resp.ReceivedAt())
	fmt.Println("  Body       :\n", resp)
	fmt.Println()
}
