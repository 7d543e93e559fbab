package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/DRLee98/random-chat-backend-sub000/platform/sns"
)

// ErrPlatformNotFound is returned if no application ARN is configured for a
// device platform.
var ErrPlatformNotFound = errors.New("platform not found")

var platformNames = map[string]sns.Platform{
	"apns":         sns.PlatformAPNS,
	"apns_sandbox": sns.PlatformAPNSSandbox,
	"gcm":          sns.PlatformGCM,
}

// platformARNs maps device platforms to their SNS application ARN. It is
// filled from repeated -platform flags of the form <platform>=<arn>.
type platformARNs map[sns.Platform]string

func (p platformARNs) Set(raw string) error {
	ps := strings.SplitN(raw, "=", 2)

	if len(ps) != 2 || ps[1] == "" {
		return fmt.Errorf("platform arn invalid: '%s'", raw)
	}

	platform, ok := platformNames[strings.ToLower(ps[0])]
	if !ok {
		return fmt.Errorf("platform '%s' not supported", ps[0])
	}

	p[platform] = ps[1]

	return nil
}

func (p platformARNs) String() string {
	ps := []string{}

	for name, platform := range platformNames {
		if arn, ok := p[platform]; ok {
			ps = append(ps, fmt.Sprintf("%s=%s", name, arn))
		}
	}

	sort.Strings(ps)

	return strings.Join(ps, ",")
}

func (p platformARNs) arn(platform sns.Platform) (string, error) {
	arn, ok := p[platform]
	if !ok {
		return "", fmt.Errorf("%s: %w", sns.PlatformIdentifiers[platform], ErrPlatformNotFound)
	}

	return arn, nil
}

func isPlatformNotFound(err error) bool {
	return errors.Is(err, ErrPlatformNotFound)
}
