package enrollment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Mahendrakumar19/streamgate/internal/apperrors"
	"github.com/Mahendrakumar19/streamgate/internal/logger"
)

const (
	wsPath     = "/webservice/rest/server.php"
	wsFunction = "core_enrol_get_users_courses"

	requestTimeout = 5 * time.Second
)

// Course as the LMS reports it, only fields the issuer needs
type Course struct {
	ID        int64  `json:"id"`
	ShortName string `json:"shortname"`
}

// moodleFault is the error shape the LMS returns with status 200
type moodleFault struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

type Client struct {
	// LMS base address, no trailing slash
	LMSAddr string

	// Web-service token appended to every call
	wsToken string

	client *http.Client
	logger logger.Logger
}

func NewClient(addr string, wsToken string, logger logger.Logger) *Client {
	return &Client{
		LMSAddr: addr,
		wsToken: wsToken,
		client:  &http.Client{},
		logger:  logger,
	}
}

// UserCourses returns the courses the user is enrolled in.
// Single non-retried call; every failure wraps apperrors.ErrEnrollmentUnavailable
// so callers fail closed and deny the token.
func (c *Client) UserCourses(ctx context.Context, userID int64) ([]Course, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("wstoken", c.wsToken)
	q.Set("wsfunction", wsFunction)
	q.Set("moodlewsrestformat", "json")
	q.Set("userid", strconv.FormatInt(userID, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.LMSAddr+wsPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request. Err: %v", apperrors.ErrEnrollmentUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request. Err: %v", apperrors.ErrEnrollmentUnavailable, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("LMS returned unexpected status", "status_code", resp.StatusCode, "user_id", userID)
		return nil, fmt.Errorf("%w: unexpected status code %d", apperrors.ErrEnrollmentUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response. Err: %v", apperrors.ErrEnrollmentUnavailable, err)
	}

	// The LMS signals faults with status 200 and an exception body,
	// so try the course list first and fall back to the fault shape
	var courses []Course
	if err := json.Unmarshal(body, &courses); err == nil {
		c.logger.Debug("Enrollment response", "user_id", userID, "courses", len(courses))
		return courses, nil
	}

	var fault moodleFault
	if err := json.Unmarshal(body, &fault); err == nil && fault.Exception != "" {
		c.logger.Warn("LMS web-service fault", "errorcode", fault.ErrorCode, "message", fault.Message)
		return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrEnrollmentUnavailable, fault.ErrorCode, fault.Exception)
	}

	return nil, fmt.Errorf("%w: unexpected response shape", apperrors.ErrEnrollmentUnavailable)
}
