package oa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/lhjing/workdash/internal/core/model"
	"github.com/lhjing/workdash/internal/core/timerange"
	"github.com/lhjing/workdash/internal/source"
)

const (
	workLogPath = "/api/my/workjournal/list"

	// sessionExpiredCode is the OA API's "please log in again" code. The
	// payload shape is only trusted once this check passes.
	sessionExpiredCode = 1024
	okCode             = 200
)

type workLogEntry struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	OrgTitle string `json:"org_title"`
	Start    string `json:"starttime"`
	End      string `json:"endtime"`
	Type     int    `json:"type"`
	LogType  int    `json:"log_type"`
}

type workLogResponse struct {
	Code int            `json:"code"`
	Msg  string         `json:"msg"`
	Data []workLogEntry `json:"data"`
}

func (s *Source) fetchWorkLog(ctx context.Context) (*model.WorkLogStatus, error) {
	rng := s.cfg.Range()
	start, end := timerange.Resolve(rng, s.now())

	params := url.Values{}
	params.Set("start", timerange.FormatDateTime(start))
	params.Set("end", timerange.FormatDateTime(end))
	params.Set("log_type", "1")
	params.Set("type", "0")

	resp, err := s.client.Get(ctx, s.apiURL()+workLogPath+"?"+params.Encode(),
		map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, &source.NetError{SourceKey: s.Key(), Err: err}
	}

	if err := source.Classify(resp, source.ClassifyOptions{
		SourceKey:             s.Key(),
		LoginURL:              s.apiURL() + loginPagePath,
		SessionExpiredCode:    sessionExpiredCode,
		SessionExpiredMessage: "请重新登录",
	}); err != nil {
		return nil, err
	}

	var payload workLogResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &source.NetError{SourceKey: s.Key(), Err: fmt.Errorf("decode work log: %w", err)}
	}
	if payload.Code != okCode {
		msg := payload.Msg
		if msg == "" {
			msg = gjson.GetBytes(resp.Body, "message").String()
		}
		return nil, &source.NetError{SourceKey: s.Key(), Err: fmt.Errorf("work log api code %d: %s", payload.Code, msg)}
	}

	status := &model.WorkLogStatus{
		DateRange:  rng,
		HasEntry:   len(payload.Data) > 0,
		EntryCount: len(payload.Data),
		Entries:    make([]model.WorkLogEntry, 0, len(payload.Data)),
	}
	for _, e := range payload.Data {
		title := e.Title
		if title == "" {
			title = e.OrgTitle
		}
		status.Entries = append(status.Entries, model.WorkLogEntry{
			ID:      e.ID,
			Title:   title,
			Start:   e.Start,
			End:     e.End,
			Type:    e.Type,
			LogType: e.LogType,
		})
	}

	return status, nil
}
