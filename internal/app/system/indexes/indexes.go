// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// LegacyGroupWebsiteIndex is the unique index older deployments put on
// grp_website. It is removed on request through DropLegacyGroupWebsite.
const LegacyGroupWebsiteIndex = "grp_website_1"

// ErrIndexNotFound is returned when dropping an index that does not exist.
var ErrIndexNotFound = errors.New("index not found")

/*
EnsureTenant reconciles every collection of one tenant database. Each
ensure* step is idempotent; failures are combined so one bad collection
does not hide another.
*/
func EnsureTenant(ctx context.Context, db *mongo.Database) error {
	var err error
	for _, step := range []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"groups", ensureGroups},
		{"networks", ensureNetworks},
		{"users", ensureUsers},
		{"roles", ensureRoles},
		{"permissions", ensurePermissions},
		{"access_requests", ensureAccessRequests},
		{"preferences", ensurePreferences},
		{"locations", ensureLocations},
		{"hosts", ensureHosts},
		{"unknown_ips", ensureUnknownIPs},
		{"login_records", ensureLoginRecords},
		{"audit_events", func(ctx context.Context, db *mongo.Database) error {
			return audit.New(db).EnsureIndexes(ctx)
		}},
	} {
		if e := step.fn(ctx, db); e != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", step.name, e))
		}
	}
	return err
}

// EnsureAll runs EnsureTenant for every database.
func EnsureAll(ctx context.Context, dbs []*mongo.Database) error {
	var err error
	for _, db := range dbs {
		if e := EnsureTenant(ctx, db); e != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", db.Name(), e))
		}
	}
	return err
}

// DropLegacyGroupWebsite removes the old unique grp_website index.
func DropLegacyGroupWebsite(ctx context.Context, db *mongo.Database) error {
	return dropByName(ctx, db.Collection("groups"), LegacyGroupWebsiteIndex)
}

func dropByName(ctx context.Context, coll *mongo.Collection, name string) error {
	if _, err := coll.Indexes().DropOne(ctx, name); err != nil {
		var ce mongo.CommandError
		if errors.As(err, &ce) && (ce.Code == 27 || ce.Name == "IndexNotFound" || ce.Code == 26) {
			return ErrIndexNotFound
		}
		if strings.Contains(err.Error(), "index not found") || strings.Contains(err.Error(), "ns not found") {
			return ErrIndexNotFound
		}
		return err
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile a desired index set for one collection                           */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return (a != nil && *a) == (b != nil && *b)
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet creates missing indexes, renames indexes whose keys match
// but whose name differs, and recreates indexes whose uniqueness changed.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes.
		existing = map[string]existingIndex{}
	}

	var errs error
	for _, m := range models {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(unique, ex.Unique) && (name == "" || ex.Name == name) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			// Name or uniqueness differs: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s(%s): drop failed: %w", coll.Name(), ex.Name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && unique != nil && *unique {
				errs = multierr.Append(errs, fmt.Errorf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
			} else {
				errs = multierr.Append(errs, fmt.Errorf("%s(%s): %w", coll.Name(), name, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique != nil && *unique),
			zap.String("took", time.Since(start).String()))
	}
	return errs
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func uniq(name string, keys ...string) mongo.IndexModel {
	return mongo.IndexModel{Keys: asc(keys...), Options: options.Index().SetUnique(true).SetName(name)}
}

func idx(name string, keys ...string) mongo.IndexModel {
	return mongo.IndexModel{Keys: asc(keys...), Options: options.Index().SetName(name)}
}

func asc(keys ...string) bson.D {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return d
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("groups"), []mongo.IndexModel{
		uniq("uniq_groups_title", "grp_title"),
		idx("idx_groups_titleci", "grp_title_ci"),
		idx("idx_groups_status", "grp_status"),
		idx("idx_groups_manager", "grp_manager"),
	})
}

func ensureNetworks(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("networks"), []mongo.IndexModel{
		uniq("uniq_networks_name", "net_name"),
		idx("idx_networks_acronym", "net_acronym"),
		idx("idx_networks_manager", "net_manager"),
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		uniq("uniq_users_email", "email"),
		{
			Keys: asc("userName"),
			Options: options.Index().
				SetUnique(true).
				SetSparse(true).
				SetName("uniq_users_username"),
		},
		idx("idx_users_group_roles_group", "group_roles.group"),
		idx("idx_users_network_roles_network", "network_roles.network"),
	})
}

func ensureRoles(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("roles"), []mongo.IndexModel{
		uniq("uniq_roles_name_scope", "role_name", "group_id", "network_id"),
		idx("idx_roles_code", "role_code"),
	})
}

func ensurePermissions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("permissions"), []mongo.IndexModel{
		uniq("uniq_permissions_permission", "permission"),
	})
}

func ensureAccessRequests(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("access_requests"), []mongo.IndexModel{
		idx("idx_access_requests_target_type_status", "targetId", "requestType", "status"),
		{
			Keys: asc("token"),
			Options: options.Index().
				SetUnique(true).
				SetSparse(true).
				SetName("uniq_access_requests_token"),
		},
	})
}

func ensurePreferences(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("preferences"), []mongo.IndexModel{
		uniq("uniq_preferences_user_group", "user_id", "group_id"),
	})
}

func ensureLocations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("locations"), []mongo.IndexModel{
		uniq("uniq_locations_name", "name"),
	})
}

func ensureHosts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("hosts"), []mongo.IndexModel{
		uniq("uniq_hosts_email_phone_site", "email", "phone_number", "site_id"),
	})
}

func ensureUnknownIPs(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("unknown_ips"), []mongo.IndexModel{
		uniq("uniq_unknown_ips_ip", "ip"),
	})
}

func ensureLoginRecords(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("login_records"), []mongo.IndexModel{
		idx("idx_login_records_user_created", "user_id", "created_at"),
	})
}
