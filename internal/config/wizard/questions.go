package wizard

import (
	"context"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// hostnameRegex accepts RFC 1123 host names, with or without a domain.
var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// runMembershipGroup prompts for the member list, token and ports.
func runMembershipGroup(ctx context.Context, result *WizardResult) error {
	var membersInput string
	clientPort := strconv.Itoa(result.ClientPort)
	peerPort := strconv.Itoa(result.PeerPort)

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Members").
				Description("One FQDN, host name or IP address per line, identical on every host").
				Placeholder("etcd1.example.com\netcd2.example.com\netcd3.example.com").
				Value(&membersInput).
				Validate(validateMembers),
			huh.NewInput().
				Title("Cluster Token").
				Description("initial-cluster-token, shared by all members").
				Value(&result.Token).
				Validate(validateToken),
		).Title("Membership"),
		huh.NewGroup(
			huh.NewInput().
				Title("Client Port").
				Value(&clientPort).
				Validate(validatePort),
			huh.NewInput().
				Title("Peer Port").
				Value(&peerPort).
				Validate(validatePort),
		).Title("Ports"),
	).RunWithContext(ctx)

	if err != nil {
		return err
	}

	result.Members = parseMembers(membersInput)
	result.ClientPort, _ = strconv.Atoi(clientPort)
	result.PeerPort, _ = strconv.Atoi(peerPort)
	return nil
}

// runBootstrapGroup prompts for the peer wait after a reset.
func runBootstrapGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Peer Wait").
				Description("How long a reset waits after purging so peers notice the member is gone").
				Options(PeerWaitOptions...).
				Value(&result.PeerWaitSeconds),
		).Title("Bootstrap"),
	).RunWithContext(ctx)
}

// runFeaturesGroup prompts for optional host features.
func runFeaturesGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Optional Features").
				Description("Space to toggle, enter to confirm").
				Options(FeaturesToOptions()...).
				Value(&result.Features),
		).Title("Features"),
	).RunWithContext(ctx)
}

func runCronGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Defrag Schedule").
				Description("Five-field cron expression").
				Value(&result.CronSchedule).
				Validate(validateSchedule),
		).Title("Defrag Cron Job"),
	).RunWithContext(ctx)
}

func runMonitoringGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Warning Threshold").
				Description("Dead members before WARNING (empty for none)").
				Value(&result.MonitorWarning).
				Validate(validateOptionalNumber),
			huh.NewInput().
				Title("Critical Threshold").
				Description("Dead members before CRITICAL (empty for none)").
				Value(&result.MonitorCritical).
				Validate(validateOptionalNumber),
		).Title("NRPE Check"),
	).RunWithContext(ctx)
}

func runBackupGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Endpoint (Optional)").
				Description("S3-compatible endpoint URL. Leave empty for AWS.").
				Placeholder("https://fsn1.your-objectstorage.com").
				Value(&result.BackupEndpoint),
			huh.NewInput().
				Title("Region").
				Value(&result.BackupRegion).
				Validate(validateRequired(errBucketRequired)),
			huh.NewInput().
				Title("Bucket").
				Value(&result.BackupBucket).
				Validate(validateRequired(errBucketRequired)),
		).Title("Backup"),
	).RunWithContext(ctx)
}

// parseMembers splits on newlines, commas and spaces and drops blanks.
func parseMembers(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return r == '\n' || r == ',' || r == ' ' || r == '\t' || r == '\r'
	})
}

func validateMembers(input string) error {
	members := parseMembers(input)
	if len(members) < 3 {
		return errMembersRequired
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if net.ParseIP(m) == nil && !hostnameRegex.MatchString(m) {
			return errMemberInvalid
		}
		if seen[m] {
			return errMemberDuplicate
		}
		seen[m] = true
	}
	return nil
}

func validatePort(s string) error {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 1 || p > 65535 {
		return errPortInvalid
	}
	return nil
}

func validateToken(s string) error {
	if strings.TrimSpace(s) == "" {
		return errTokenRequired
	}
	return nil
}

func validateSchedule(s string) error {
	if len(strings.Fields(s)) != 5 {
		return errScheduleInvalid
	}
	return nil
}

func validateOptionalNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
		return errNumberInvalid
	}
	return nil
}

func validateRequired(errEmpty error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errEmpty
		}
		return nil
	}
}
