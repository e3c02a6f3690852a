package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-vrc-link/internal/config"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/utils"
	"github.com/MKhiriev/go-vrc-link/models"
)

type httpPlatformAdapter struct {
	client *utils.HTTPClient
	jar    CookieJar

	logger *logger.Logger
}

// NewHTTPPlatformAdapter constructs the resty implementation of
// [PlatformAdapter]. The base URL comes from adapterCfg.APIAddress and every
// request carries appCfg.UserAgent and the cookies provided by jar.
//
// Returns an error if the API address is empty or cannot be parsed.
func NewHTTPPlatformAdapter(adapterCfg config.Adapter, appCfg config.App, jar CookieJar, log *logger.Logger) (PlatformAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.APIAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter api address: %w", err)
	}

	client := utils.NewHTTPClient(baseURL, appCfg.UserAgent, adapterCfg.RequestTimeout)

	return &httpPlatformAdapter{client: client, jar: jar, logger: log.Component("adapter")}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpPlatformAdapter) Login(ctx context.Context, username, password string) (models.AuthUserResponse, error) {
	resp, err := h.request(ctx).
		SetBasicAuth(url.QueryEscape(username), url.QueryEscape(password)).
		Get("/auth/user")
	if err != nil {
		return models.AuthUserResponse{}, fmt.Errorf("login request: %w", err)
	}
	if err = h.finish(ctx, resp); err != nil {
		return models.AuthUserResponse{}, err
	}

	return decodeAuthUser(resp.Body())
}

func (h *httpPlatformAdapter) GetCurrentUser(ctx context.Context) (models.AuthUserResponse, error) {
	resp, err := h.request(ctx).Get("/auth/user")
	if err != nil {
		return models.AuthUserResponse{}, fmt.Errorf("get current user request: %w", err)
	}
	if err = h.finish(ctx, resp); err != nil {
		return models.AuthUserResponse{}, err
	}

	return decodeAuthUser(resp.Body())
}

func (h *httpPlatformAdapter) VerifyTwoFactor(ctx context.Context, method models.TwoFactorMethod, code string) (bool, error) {
	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.TwoFactorVerifyRequest{Code: code}).
		Post("/auth/twofactorauth/" + string(method) + "/verify")
	if err != nil {
		return false, fmt.Errorf("verify two factor request: %w", err)
	}
	if err = h.finish(ctx, resp); err != nil {
		return false, err
	}

	var verified models.TwoFactorVerifyResponse
	if err = decode(resp.Body(), &verified); err != nil {
		return false, err
	}
	return verified.Verified, nil
}

func (h *httpPlatformAdapter) Logout(ctx context.Context) error {
	resp, err := h.request(ctx).Put("/logout")
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	return h.finish(ctx, resp)
}

func (h *httpPlatformAdapter) ListFriends(ctx context.Context, offset, n int) ([]models.LimitedUser, error) {
	var friends []models.LimitedUser
	err := h.getPage(ctx, "/auth/user/friends", offset, n, nil, &friends)
	return friends, err
}

func (h *httpPlatformAdapter) ListAvatars(ctx context.Context, offset, n int) ([]models.Avatar, error) {
	var avatars []models.Avatar
	err := h.getPage(ctx, "/avatars", offset, n, map[string]string{
		"user":          "me",
		"releaseStatus": "all",
	}, &avatars)
	return avatars, err
}

func (h *httpPlatformAdapter) ListGroups(ctx context.Context, userID string, offset, n int) ([]models.Group, error) {
	var groups []models.Group
	err := h.getPage(ctx, "/users/"+url.PathEscape(userID)+"/groups", offset, n, nil, &groups)
	return groups, err
}

func (h *httpPlatformAdapter) UpdateStatus(ctx context.Context, userID string, req models.StatusUpdateRequest) (json.RawMessage, error) {
	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Put("/users/" + url.PathEscape(userID))
	if err != nil {
		return nil, fmt.Errorf("update status request: %w", err)
	}
	if err = h.finish(ctx, resp); err != nil {
		return nil, err
	}

	return rawObject(resp.Body())
}

func (h *httpPlatformAdapter) SelectAvatar(ctx context.Context, avatarID string) (json.RawMessage, error) {
	resp, err := h.request(ctx).Put("/avatars/" + url.PathEscape(avatarID) + "/select")
	if err != nil {
		return nil, fmt.Errorf("select avatar request: %w", err)
	}
	if err = h.finish(ctx, resp); err != nil {
		return nil, err
	}

	return rawObject(resp.Body())
}

func (h *httpPlatformAdapter) Invite(ctx context.Context, userID string, req models.InviteRequest) error {
	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/invite/" + url.PathEscape(userID))
	if err != nil {
		return fmt.Errorf("invite request: %w", err)
	}
	return h.finish(ctx, resp)
}

func (h *httpPlatformAdapter) RequestInvite(ctx context.Context, userID string, req models.RequestInviteRequest) error {
	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/requestInvite/" + url.PathEscape(userID))
	if err != nil {
		return fmt.Errorf("request invite request: %w", err)
	}
	return h.finish(ctx, resp)
}

func (h *httpPlatformAdapter) ListInviteMessages(ctx context.Context, userID string, messageType models.InviteMessageType) ([]models.InviteMessage, error) {
	resp, err := h.request(ctx).
		Get("/message/" + url.PathEscape(userID) + "/" + string(messageType))
	if err != nil {
		return nil, fmt.Errorf("list invite messages request: %w", err)
	}
	if err = h.finish(ctx, resp); err != nil {
		return nil, err
	}

	var messages []models.InviteMessage
	if err = decode(resp.Body(), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (h *httpPlatformAdapter) UpdateInviteMessage(ctx context.Context, userID string, messageType models.InviteMessageType, slot int, message string) ([]models.InviteMessage, error) {
	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"message": message}).
		Put("/message/" + url.PathEscape(userID) + "/" + string(messageType) + "/" + strconv.Itoa(slot))
	if err != nil {
		return nil, fmt.Errorf("update invite message request: %w", err)
	}
	if err = h.finish(ctx, resp); err != nil {
		return nil, err
	}

	var messages []models.InviteMessage
	if err = decode(resp.Body(), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (h *httpPlatformAdapter) getPage(ctx context.Context, path string, offset, n int, params map[string]string, target any) error {
	req := h.request(ctx).
		SetQueryParam("offset", strconv.Itoa(offset)).
		SetQueryParam("n", strconv.Itoa(n))
	if params != nil {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("get %s request: %w", path, err)
	}
	if err = h.finish(ctx, resp); err != nil {
		return err
	}

	return decode(resp.Body(), target)
}

// request builds a request carrying the current session cookies.
func (h *httpPlatformAdapter) request(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if h.jar != nil {
		if cookie := h.jar.CookieHeader(ctx); cookie != "" {
			req.SetHeader("Cookie", cookie)
		}
	}
	return req
}

// finish maps the status code and, on success only, hands the response
// cookies to the jar. A rejected login therefore never touches the session.
func (h *httpPlatformAdapter) finish(ctx context.Context, resp *resty.Response) error {
	if err := mapHTTPError(resp); err != nil {
		taskID, _ := utils.GetTaskIDFromContext(ctx)
		h.logger.Debug().
			Str("task_id", taskID).
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Msg("platform request failed")
		return err
	}

	if h.jar != nil {
		if cookies := resp.Cookies(); len(cookies) > 0 {
			if err := h.jar.StoreCookies(ctx, cookies); err != nil {
				h.logger.Warn().Err(err).Msg("failed to store response cookies")
			}
		}
	}
	return nil
}

func decodeAuthUser(body []byte) (models.AuthUserResponse, error) {
	var login models.LoginResponse
	if err := decode(body, &login); err != nil {
		return models.AuthUserResponse{}, err
	}
	if len(login.RequiresTwoFactorAuth) > 0 {
		return models.AuthUserResponse{RequiresTwoFactorAuth: login.RequiresTwoFactorAuth}, nil
	}

	var user models.CurrentUser
	if err := decode(body, &user); err != nil {
		return models.AuthUserResponse{}, err
	}
	if user.ID == "" {
		return models.AuthUserResponse{}, fmt.Errorf("%w: user without id", ErrMalformedResponse)
	}
	return models.AuthUserResponse{User: &user}, nil
}

func decode(body []byte, target any) error {
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

func rawObject(body []byte) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := decode(body, &obj); err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
