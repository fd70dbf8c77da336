package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"dsaboost/internal/modules/functions/domain"
	"dsaboost/internal/modules/functions/dto"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var subjects = map[domain.EmailType]string{
	domain.EmailWelcome:           "🚀 Welcome to DSA Daily Boost - Your Coding Journey Begins!",
	domain.EmailTimerComplete:     "🎉 Study Session Complete - Great Work!",
	domain.EmailDailySummary:      "📊 Your Daily Progress Summary - DSA Daily Boost",
	domain.EmailAdminNotification: "🔔 New User Registration - DSA Daily Boost",
}

// Renderer builds the transactional email bodies.
type Renderer struct {
	appURL string
	pages  map[domain.EmailType]*template.Template
}

func NewRenderer(appURL string) (*Renderer, error) {
	pages := map[domain.EmailType]*template.Template{}
	for kind := range subjects {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html.tmpl", "templates/"+string(kind)+".html.tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		pages[kind] = tmpl
	}
	return &Renderer{appURL: appURL, pages: pages}, nil
}

// Layout carries the fields every email page shares.
type Layout struct {
	Title  string
	AppURL string
}

func (r *Renderer) Welcome(data dto.WelcomeData) (domain.EmailRequest, error) {
	view := struct {
		Layout
		dto.WelcomeData
	}{Layout{"Welcome to DSA Daily Boost", r.appURL}, data}
	return r.render(domain.EmailWelcome, data.To, view)
}

func (r *Renderer) TimerComplete(data dto.TimerCompleteData) (domain.EmailRequest, error) {
	view := struct {
		Layout
		dto.TimerCompleteData
		Badges []string
	}{Layout{"Study Session Complete", r.appURL}, data, TimerBadges(data)}
	return r.render(domain.EmailTimerComplete, data.To, view)
}

func (r *Renderer) DailySummary(data dto.DailySummaryData) (domain.EmailRequest, error) {
	view := struct {
		Layout
		dto.DailySummaryData
		GoalProblems int
		GoalMinutes  int
	}{Layout{"Daily Progress Summary", r.appURL}, data, max(data.ProblemsSolved, 3), max(data.StudyMinutes, 30)}
	return r.render(domain.EmailDailySummary, data.To, view)
}

func (r *Renderer) AdminNotification(to string, data dto.AdminData) (domain.EmailRequest, error) {
	if data.Provider == "" {
		data.Provider = "Identity provider"
	}
	view := struct {
		Layout
		dto.AdminData
	}{Layout{"New User Registration", r.appURL}, data}
	return r.render(domain.EmailAdminNotification, to, view)
}

// TimerBadges lists the achievements earned by one session.
func TimerBadges(data dto.TimerCompleteData) []string {
	badges := []string{}
	if data.ProblemsSolved >= 5 {
		badges = append(badges, "🏆 Problem Solver")
	}
	if data.OvertimeMin > 0 {
		badges = append(badges, "⚡ Overtime Champion")
	}
	if data.DurationMin >= 60 {
		badges = append(badges, "🎯 Focus Master")
	}
	return badges
}

func (r *Renderer) render(kind domain.EmailType, to string, view any) (domain.EmailRequest, error) {
	var buf bytes.Buffer
	if err := r.pages[kind].ExecuteTemplate(&buf, "layout", view); err != nil {
		return domain.EmailRequest{}, fmt.Errorf("render %s email: %w", kind, err)
	}
	return domain.EmailRequest{To: to, Subject: subjects[kind], HTML: buf.String(), Type: kind}, nil
}
