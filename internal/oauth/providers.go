package oauth

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// normalizeGoogle maps the OpenID Connect userinfo shape.
func normalizeGoogle(raw []byte) (Profile, error) {
	var body struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return Profile{}, err
	}
	if body.Email == "" {
		return Profile{}, fmt.Errorf("google profile missing email")
	}
	return Profile{
		ID:      body.Sub,
		Email:   body.Email,
		Name:    body.Name,
		Picture: body.Picture,
	}, nil
}

// normalizeGithub maps the /user shape. Accounts that hide their email
// fall back to the noreply address GitHub assigns to the login.
func normalizeGithub(raw []byte) (Profile, error) {
	var body struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return Profile{}, err
	}
	if body.Login == "" {
		return Profile{}, fmt.Errorf("github profile missing login")
	}

	email := body.Email
	if email == "" {
		email = body.Login + "@users.noreply.github.com"
	}
	name := body.Name
	if name == "" {
		name = body.Login
	}
	return Profile{
		ID:      strconv.FormatInt(body.ID, 10),
		Email:   email,
		Name:    name,
		Picture: body.AvatarURL,
	}, nil
}
