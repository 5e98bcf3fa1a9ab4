package api

import (
	"context"
	"net/url"

	"github.com/lwei/stockmon/internal/model"
)

// Login exchanges a username and password for a bearer token via the
// form-encoded login endpoint. The caller is responsible for storing the
// returned token.
func (c *Client) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp model.LoginResponse
	if err := c.postForm(ctx, "/auth/login", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the account that owns the current bearer token.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a new account. Email is optional.
func (c *Client) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	payload := map[string]string{
		"username": username,
		"password": password,
	}
	if email != "" {
		payload["email"] = email
	}

	var user model.User
	if err := c.post(ctx, "/auth/register", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
