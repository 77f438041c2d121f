package service

import (
	"github.com/google/uuid"

	"onboarding/internal/model"
)

type defaultItem struct {
	period   model.Period
	title    string
	priority model.Priority
}

var defaultItems = []defaultItem{
	{model.PeriodFirstDay, "Complete IT setup and access accounts", model.PriorityHigh},
	{model.PeriodFirstDay, "Meet your direct manager and team", model.PriorityHigh},
	{model.PeriodFirstDay, "Review job description and expectations", model.PriorityHigh},
	{model.PeriodFirstDay, "Complete required HR paperwork", model.PriorityMedium},
	{model.PeriodFirstDay, "Take office tour and locate key areas", model.PriorityMedium},

	{model.PeriodFirstWeek, "Schedule 1:1s with key stakeholders", model.PriorityHigh},
	{model.PeriodFirstWeek, "Review company handbook and policies", model.PriorityMedium},
	{model.PeriodFirstWeek, "Set up development environment", model.PriorityHigh},
	{model.PeriodFirstWeek, "Join relevant Slack channels and meetings", model.PriorityMedium},
	{model.PeriodFirstWeek, "Complete security and compliance training", model.PriorityMedium},

	{model.PeriodSecondWeek, "Shadow team members on current projects", model.PriorityHigh},
	{model.PeriodSecondWeek, "Review codebase and documentation", model.PriorityHigh},
	{model.PeriodSecondWeek, "Attend team retrospective and planning", model.PriorityMedium},

	{model.PeriodThirdWeek, "Take on first small project or task", model.PriorityHigh},
	{model.PeriodThirdWeek, "Provide feedback on onboarding process", model.PriorityLow},

	{model.PeriodFirstMonth, "Complete 30-day check-in with manager", model.PriorityHigh},
	{model.PeriodFirstMonth, "Set goals for next 60 days", model.PriorityMedium},
}

type defaultCategory struct {
	category, job, situation, outcome string
	resources                         []model.Resource
}

var defaultCategories = []defaultCategory{
	{
		category:  "Design Tools & Systems",
		job:       "create consistent designs",
		situation: "access to design systems and tools",
		outcome:   "work efficiently and maintain brand consistency",
		resources: []model.Resource{
			{Name: "Figma Component Library", Type: model.ResourceTypeTool, URL: "#"},
			{Name: "Design System Documentation", Type: model.ResourceTypeReference, URL: "#"},
			{Name: "Brand Guidelines", Type: model.ResourceTypeGuide, URL: "#"},
		},
	},
	{
		category:  "Process & Workflow",
		job:       "understand our design process",
		situation: "clear workflow documentation",
		outcome:   "collaborate effectively with my team",
		resources: []model.Resource{
			{Name: "Design Process Playbook", Type: model.ResourceTypeGuide, URL: "#"},
			{Name: "Critique Guidelines", Type: model.ResourceTypeGuide, URL: "#"},
			{Name: "Handoff Checklist", Type: model.ResourceTypeTool, URL: "#"},
		},
	},
	{
		category:  "Research & Strategy",
		job:       "make informed design decisions",
		situation: "access to user research and strategy docs",
		outcome:   "design with user needs in mind",
		resources: []model.Resource{
			{Name: "User Research Repository", Type: model.ResourceTypeTool, URL: "#"},
			{Name: "Question Bank", Type: model.ResourceTypeGuide, URL: "#"},
			{Name: "Usability Testing Templates", Type: model.ResourceTypeTemplate, URL: "#"},
		},
	},
}

// baselineItems returns fresh copies of the default checklist for userID.
func baselineItems(userID uuid.UUID, versionID *uuid.UUID) []model.TemplateItem {
	items := make([]model.TemplateItem, 0, len(defaultItems))
	for _, d := range defaultItems {
		items = append(items, model.TemplateItem{
			UserID:    userID,
			VersionID: versionID,
			Period:    d.period,
			Title:     d.title,
			Priority:  d.priority,
		})
	}
	return items
}

// baselineCategories returns fresh copies of the default resource library.
func baselineCategories(userID uuid.UUID, versionID *uuid.UUID) []model.ResourceCategory {
	categories := make([]model.ResourceCategory, 0, len(defaultCategories))
	for _, d := range defaultCategories {
		resources := make([]model.Resource, len(d.resources))
		copy(resources, d.resources)
		categories = append(categories, model.ResourceCategory{
			UserID:    userID,
			VersionID: versionID,
			Category:  d.category,
			Job:       d.job,
			Situation: d.situation,
			Outcome:   d.outcome,
			Resources: resources,
		})
	}
	return categories
}
