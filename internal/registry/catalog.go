package registry

import "toolbelt/internal/domain"

// Statically declared members per kind, in declaration order. These are the
// slugs the SDK knows about at compile time; their full records may still
// come from the local registry tables, the disk cache or the remote
// metadata service.
var staticApps = []domain.Slug{
	"ASANA",
	"ATTIO",
	"BITBUCKET",
	"BROWSER_TOOL",
	"CLICKUP",
	"DISCORD",
	"DROPBOX",
	"FIGMA",
	"FILETOOL",
	"GIT",
	"GITHUB",
	"GITLAB",
	"GMAIL",
	"GOOGLECALENDAR",
	"GOOGLEDOCS",
	"GOOGLEDRIVE",
	"GOOGLESHEETS",
	"HACKERNEWS",
	"HUBSPOT",
	"JIRA",
	"LINEAR",
	"NOTION",
	"PAGERDUTY",
	"SERPAPI",
	"SHELLTOOL",
	"SLACK",
	"SLACKBOT",
	"SNOWFLAKE",
	"SPOTIFY",
	"TRELLO",
	"TWILIO",
	"TYPEFORM",
	"WEATHERMAP",
	"WHATSAPP",
	"YOUTUBE",
	"ZENDESK",
	"ZOOM",
}

var staticActions = []domain.Slug{
	"GITHUB_CREATE_ISSUE",
	"GITHUB_GET_THE_AUTHENTICATED_USER",
	"GITHUB_LIST_REPOSITORIES",
	"GITHUB_STAR_A_REPOSITORY",
	"GMAIL_FETCH_EMAILS",
	"GMAIL_SEND_EMAIL",
	"GOOGLECALENDAR_CREATE_EVENT",
	"GOOGLECALENDAR_LIST_EVENTS",
	"JIRA_CREATE_ISSUE",
	"LINEAR_CREATE_ISSUE",
	"NOTION_CREATE_PAGE",
	"SERPAPI_SEARCH",
	"SLACK_LIST_CHANNELS",
	"SLACK_SEND_MESSAGE",
	"TRELLO_CREATE_CARD",
	"WEATHERMAP_CURRENT_WEATHER",
}

var staticTriggers = []domain.Slug{
	"GITHUB_COMMIT_EVENT",
	"GITHUB_PULL_REQUEST_EVENT",
	"GMAIL_NEW_GMAIL_MESSAGE",
	"SLACK_RECEIVE_MESSAGE",
	"SLACK_RECEIVE_THREAD_REPLY",
}

// deprecatedSlugs maps retired slugs to their replacements. Resolving a
// retired slug substitutes the replacement and logs a warning.
var deprecatedSlugs = map[domain.Slug]domain.Slug{
	"GITHUB_STAR_REPO":              "GITHUB_STAR_A_REPOSITORY",
	"GITHUB_GET_AUTHENTICATED_USER": "GITHUB_GET_THE_AUTHENTICATED_USER",
	"SLACK_POST_MESSAGE":            "SLACK_SEND_MESSAGE",
}

func staticMembers(kind domain.EntityKind) []domain.Slug {
	switch kind {
	case domain.KindApp:
		return staticApps
	case domain.KindAction:
		return staticActions
	case domain.KindTrigger:
		return staticTriggers
	default:
		return nil
	}
}

func isStaticMember(kind domain.EntityKind, slug domain.Slug) bool {
	for _, member := range staticMembers(kind) {
		if member == slug {
			return true
		}
	}
	return false
}
