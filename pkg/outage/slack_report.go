package outage

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"outage-pulse/pkg/config"
	"outage-pulse/pkg/repositories"
	"outage-pulse/pkg/types"
)

// SlackReporter posts outage notifications to the configured Slack channel.
// New outages get a channel message; restores reply in the original thread.
type SlackReporter struct {
	slackClient     *slack.Client
	slackThreadRepo repositories.SlackThreadRepository
	configManager   *config.Manager[types.AppConfig]
	logger          *logrus.Logger
}

// NewSlackReporter creates a new SlackReporter instance.
func NewSlackReporter(
	slackClient *slack.Client,
	slackThreadRepo repositories.SlackThreadRepository,
	configManager *config.Manager[types.AppConfig],
	logger *logrus.Logger,
) *SlackReporter {
	return &SlackReporter{
		slackClient:     slackClient,
		slackThreadRepo: slackThreadRepo,
		configManager:   configManager,
		logger:          logger,
	}
}

// ReportOutage posts a new-outage message to the configured channel and
// records the resulting thread for later restore replies.
func (r *SlackReporter) ReportOutage(outage *types.Outage) error {
	cfg := r.configManager.Get()
	if cfg.Slack.Channel == "" {
		return nil
	}

	message := r.formatOutageMessage(outage, cfg.Slack.BaseURL)

	logger := r.logger.WithFields(logrus.Fields{
		"outage_id": outage.ID,
		"channel":   cfg.Slack.Channel,
	})

	channelID, timestamp, err := r.slackClient.PostMessage(
		cfg.Slack.Channel,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		logger.WithField("error", err).Error("Failed to post outage message to Slack")
		return err
	}

	thread := &types.SlackThread{
		OutageID:        outage.ID,
		Channel:         cfg.Slack.Channel,
		ChannelID:       channelID,
		ThreadTimestamp: timestamp,
	}
	if err := r.slackThreadRepo.CreateThread(thread); err != nil {
		logger.WithField("error", err).Error("Failed to store Slack thread timestamp")
		return err
	}

	logger.Info("Posted outage to Slack")
	return nil
}

// ReportRestore replies in the outage's Slack threads and marks them resolved.
// When no thread exists for the outage the restore is posted as a fresh
// channel message so the notification is not lost.
func (r *SlackReporter) ReportRestore(outage *types.Outage) error {
	threads, err := r.slackThreadRepo.GetThreadsForOutage(outage.ID)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"outage_id": outage.ID,
			"error":     err,
		}).Warn("Failed to get Slack threads for outage")
		return err
	}

	message := r.formatRestoreMessage(outage)

	if len(threads) == 0 {
		cfg := r.configManager.Get()
		if cfg.Slack.Channel == "" {
			return nil
		}
		_, _, err := r.slackClient.PostMessage(
			cfg.Slack.Channel,
			slack.MsgOptionText(message, false),
			slack.MsgOptionAsUser(true),
		)
		return err
	}

	var lastErr error
	for _, thread := range threads {
		logger := r.logger.WithFields(logrus.Fields{
			"outage_id":        outage.ID,
			"channel":          thread.Channel,
			"thread_timestamp": thread.ThreadTimestamp,
		})

		_, _, err := r.slackClient.PostMessage(
			thread.Channel,
			slack.MsgOptionText(message, false),
			slack.MsgOptionTS(thread.ThreadTimestamp),
			slack.MsgOptionAsUser(true),
		)
		if err != nil {
			logger.WithField("error", err).Error("Failed to post restore reply to Slack")
			lastErr = err
			continue
		}

		itemRef := slack.NewRefToMessage(thread.ChannelID, thread.ThreadTimestamp)
		if err := r.slackClient.AddReaction("white_check_mark", itemRef); err != nil {
			logger.WithField("error", err).Warn("Failed to add resolved reaction to message")
		}

		logger.Info("Posted restore update to Slack thread")
	}

	return lastErr
}

func (r *SlackReporter) formatOutageMessage(outage *types.Outage, baseURL string) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("🚨 Outage Reported: %s in %s", outage.Service, outage.Area))
	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Down since: `%s`", outage.DownTime.Format(time.RFC3339)))
	parts = append(parts, fmt.Sprintf("Confidence: `%s`", outage.ConfidenceLevel))
	if link := buildOutageLink(baseURL, outage.ID); link != "" {
		parts = append(parts, "")
		parts = append(parts, fmt.Sprintf("<%s|View Outage>", link))
	}
	return strings.Join(parts, "\n")
}

func (r *SlackReporter) formatRestoreMessage(outage *types.Outage) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("✅ Service Restored: %s in %s (#%d)", outage.Service, outage.Area, outage.ID))
	parts = append(parts, "")
	if outage.UpTime.Valid {
		parts = append(parts, fmt.Sprintf("Restored at: `%s`", outage.UpTime.Time.Format(time.RFC3339)))
	}
	if outage.DurationMinutes != nil {
		parts = append(parts, fmt.Sprintf("Total downtime: `%.1f minutes`", *outage.DurationMinutes))
	}
	return strings.Join(parts, "\n")
}

func buildOutageLink(baseURL string, outageID uint) string {
	if baseURL == "" {
		return ""
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return fmt.Sprintf("%soutages/%d", baseURL, outageID)
}
