// Package route53 discovers and advertises chord peers through a
// Route53 hosted zone TXT record, one value per live endpoint.
// Grounded on the teacher's referenced bootstrap.NewRoute53Bootstrap
// (cmd/node/main.go, cfg.DHT.Bootstrap.Route53) and on s4nat-dns-chord's
// node.go QueryDNS, which resolves ring membership through DNS rather
// than a gossip or static list — generalized here from A-record peer
// IPs to a TXT record of "host:port" endpoints, since chord endpoints
// need more than an IP to be dialable.
package route53

import (
	"context"
	"fmt"

	"chordring/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
)

// Bootstrap discovers and advertises peers via a single TXT record in a
// Route53 hosted zone, satisfying discovery.Bootstrap.
type Bootstrap struct {
	client       *route53.Client
	hostedZoneID string
	recordName   string
	ttl          int64
}

// New builds a Bootstrap from cfg, loading AWS credentials the default
// way (environment, shared config, instance role).
func New(cfg config.Route53Config) (*Bootstrap, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30
	}

	return &Bootstrap{
		client:       route53.NewFromConfig(awsCfg),
		hostedZoneID: cfg.HostedZoneID,
		recordName:   cfg.RecordName,
		ttl:          ttl,
	}, nil
}

// Discover lists the TXT record's current values as candidate peer
// endpoints.
func (b *Bootstrap) Discover(ctx context.Context) ([]string, error) {
	out, err := b.client.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(b.hostedZoneID),
		StartRecordName: aws.String(b.recordName),
		StartRecordType: types.RRTypeTxt,
		MaxItems:        aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("list route53 record sets: %w", err)
	}

	var peers []string
	for _, rrset := range out.ResourceRecordSets {
		if aws.ToString(rrset.Name) != dnsName(b.recordName) || rrset.Type != types.RRTypeTxt {
			continue
		}
		for _, rr := range rrset.ResourceRecords {
			// Skip the empty placeholder writeRecordSet leaves behind.
			if v := unquote(aws.ToString(rr.Value)); v != "" {
				peers = append(peers, v)
			}
		}
	}
	return peers, nil
}

// Register adds self to the TXT record's value set via UPSERT, fetching
// the current set first so concurrent joiners don't clobber each other
// under normal (non-adversarial) operation.
func (b *Bootstrap) Register(ctx context.Context, self string) error {
	existing, err := b.Discover(ctx)
	if err != nil {
		return err
	}
	return b.writeRecordSet(ctx, appendUnique(existing, self))
}

// Deregister removes self from the TXT record's value set.
func (b *Bootstrap) Deregister(ctx context.Context, self string) error {
	existing, err := b.Discover(ctx)
	if err != nil {
		return err
	}
	return b.writeRecordSet(ctx, remove(existing, self))
}

func (b *Bootstrap) writeRecordSet(ctx context.Context, peers []string) error {
	records := make([]types.ResourceRecord, 0, len(peers))
	for _, p := range peers {
		records = append(records, types.ResourceRecord{Value: aws.String(quote(p))})
	}
	if len(records) == 0 {
		// Route53 rejects a TXT record set with zero resource records;
		// write a single empty placeholder so the record continues to
		// exist for the next Discover.
		records = append(records, types.ResourceRecord{Value: aws.String(`""`)})
	}

	_, err := b.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(b.hostedZoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name:            aws.String(b.recordName),
						Type:            types.RRTypeTxt,
						TTL:             aws.Int64(b.ttl),
						ResourceRecords: records,
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("upsert route53 record set: %w", err)
	}
	return nil
}

func dnsName(name string) string {
	if len(name) > 0 && name[len(name)-1] == '.' {
		return name
	}
	return name + "."
}

func quote(s string) string { return `"` + s + `"` }

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func appendUnique(peers []string, self string) []string {
	for _, p := range peers {
		if p == self {
			return peers
		}
	}
	return append(peers, self)
}

func remove(peers []string, self string) []string {
	out := peers[:0]
	for _, p := range peers {
		if p != self {
			out = append(out, p)
		}
	}
	return out
}
