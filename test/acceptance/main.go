package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/stackproof/stackproof/internal/appapi"
	"github.com/stackproof/stackproof/internal/checks"
	"github.com/stackproof/stackproof/internal/cloud"
	"github.com/stackproof/stackproof/internal/config"
	"github.com/stackproof/stackproof/internal/mailbox"
)

type configuration struct {
	Region         string
	Profile        string
	ResourcePrefix string
	AppURL         string
	AppSecret      string
	AppIssuer      string
	MailURL        string
	MailToken      string
	MailInbox      string
	Recipient      string
	PollAttempts   int
	PollInterval   time.Duration
}

var (
	cfg        configuration
	suiteDeps  *checks.Deps
	appClient  *appapi.Client
	mailClient *mailbox.Client
)

func (c configuration) Validate() error {
	if c.Region == "" && c.AppURL == "" {
		return errors.New("nothing to test: set -region and/or -app-url")
	}
	if c.ResourcePrefix == "" {
		return errors.New("resource prefix is empty")
	}
	if c.PollAttempts < 1 {
		return fmt.Errorf("invalid poll attempts %d", c.PollAttempts)
	}
	for name, raw := range map[string]string{"app url": c.AppURL, "mail url": c.MailURL} {
		if raw == "" {
			continue
		}
		if _, err := url.Parse(raw); err != nil {
			return fmt.Errorf("failed to parse %s: %v", name, err)
		}
	}
	if c.MailURL != "" && c.Recipient == "" {
		return errors.New("recipient is required when a mailbox is configured")
	}
	return nil
}

func main() {
	flag.StringVar(&cfg.Region, "region", "", "AWS region of the deployment (empty skips infrastructure specs)")
	flag.StringVar(&cfg.Profile, "profile", "", "AWS shared config profile")
	flag.StringVar(&cfg.ResourcePrefix, "resource-prefix", "vault", "prefix the deployment's resources are named with")
	flag.StringVar(&cfg.AppURL, "app-url", "", "base URL of the application under test (empty skips application specs)")
	flag.StringVar(&cfg.AppSecret, "app-secret", "", "shared secret for application bearer tokens")
	flag.StringVar(&cfg.AppIssuer, "app-issuer", "stackproof", "issuer claim for application bearer tokens")
	flag.StringVar(&cfg.MailURL, "mail-url", "", "base URL of the mail capture service (empty skips notification specs)")
	flag.StringVar(&cfg.MailToken, "mail-token", "", "API token for the mail capture service")
	flag.StringVar(&cfg.MailInbox, "mail-inbox", "", "inbox ID on the mail capture service")
	flag.StringVar(&cfg.Recipient, "recipient", "", "address upload notifications are sent to")
	flag.IntVar(&cfg.PollAttempts, "poll-attempts", 10, "notification poll budget")
	flag.DurationVar(&cfg.PollInterval, "poll-interval", 10*time.Second, "delay between notification polls")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("failed to validate configuration: %v", err)
	}

	suiteDeps = &checks.Deps{
		Config: &config.Configuration{
			Cloud: config.Cloud{
				Region:         cfg.Region,
				Profile:        cfg.Profile,
				ResourcePrefix: cfg.ResourcePrefix,
			},
		},
	}

	if cfg.Region != "" {
		awsCfg, err := cloud.LoadAWSConfig(context.Background(), cfg.Region, cfg.Profile)
		if err != nil {
			log.Fatalf("failed to load AWS configuration: %v", err)
		}
		clients := cloud.NewClients(awsCfg)
		suiteDeps.Compute = cloud.NewCompute(clients.EC2)
		suiteDeps.Storage = cloud.NewStorage(clients.S3)
		suiteDeps.Database = cloud.NewDatabase(clients.RDS, clients.DynamoDB)
		suiteDeps.Messaging = cloud.NewMessaging(clients.SNS, clients.SQS)
		suiteDeps.Functions = cloud.NewFunctions(clients.Lambda)
		suiteDeps.Identity = cloud.NewIdentity(clients.IAM)
		suiteDeps.Audit = cloud.NewAudit(clients.Logs, clients.CloudTrail)
	}

	if cfg.AppURL != "" {
		signer := appapi.NewTokenSigner(cfg.AppSecret, cfg.AppIssuer)
		token, err := signer.Sign("acceptance", appapi.DefaultTokenTTL)
		if err != nil {
			log.Fatalf("failed to sign app token: %v", err)
		}
		appClient = appapi.NewClient(cfg.AppURL, token)
		suiteDeps.App = appClient
	}

	if cfg.MailURL != "" {
		mailClient = mailbox.NewClient(mailbox.Config{
			BaseURL:  cfg.MailURL,
			APIToken: cfg.MailToken,
			InboxID:  cfg.MailInbox,
			Attempts: cfg.PollAttempts,
			Interval: cfg.PollInterval,
		})
		suiteDeps.Mail = mailClient
	}

	RegisterFailHandler(Fail)
	if !RunSpecs(&testing.T{}, "Acceptance Suite") {
		os.Exit(1)
	}
}
