// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strconv"

	"github.com/dalemusser/accesshub/internal/app/store/audit"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/requestid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Modes for the audit_log setting.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Logger writes audit events to zap and to the tenant's audit_events
// collection, depending on mode. A nil *Logger is a no-op.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	mode   string
}

// New creates a Logger that is not yet bound to a tenant database.
func New(zapLog *zap.Logger, mode string) *Logger {
	switch mode {
	case ModeAll, ModeDB, ModeLog, ModeOff:
	default:
		mode = ModeAll
	}
	return &Logger{zapLog: zapLog, mode: mode}
}

// ForTenant returns a copy that stores events in db.
func (l *Logger) ForTenant(db *mongo.Database) *Logger {
	if l == nil {
		return nil
	}
	cp := *l
	cp.store = audit.New(db)
	return &cp
}

// Mode returns the configured mode.
func (l *Logger) Mode() string {
	if l == nil {
		return ModeOff
	}
	return l.mode
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.Scope != "" {
		fields = append(fields, zap.String("scope", event.Scope))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if n := len(event.UserIDs); n > 0 {
		fields = append(fields, zap.Int("user_count", n))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the mode. The actor and request id are
// taken from ctx when the event does not carry them.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil || l.mode == ModeOff {
		return
	}
	if event.ActorID == nil {
		if u, ok := auth.FromContext(ctx); ok {
			if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
				event.ActorID = &oid
			}
		}
	}
	if event.RequestID == "" {
		event.RequestID = requestid.FromContext(ctx)
	}

	if l.mode == ModeAll || l.mode == ModeLog {
		l.logToZap(event)
	}
	if (l.mode == ModeAll || l.mode == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Provisioning ---

// GroupCreated records a new group provisioned by creator.
func (l *Logger) GroupCreated(ctx context.Context, groupID, creatorID primitive.ObjectID, title string) {
	l.Log(ctx, audit.Event{
		EventType: audit.EventGroupCreated,
		Scope:     "group",
		TargetID:  &groupID,
		UserIDs:   []primitive.ObjectID{creatorID},
		Success:   true,
		Details:   map[string]string{"title": title},
	})
}

// NetworkCreated records a new network provisioned by creator.
func (l *Logger) NetworkCreated(ctx context.Context, networkID, creatorID primitive.ObjectID, name string) {
	l.Log(ctx, audit.Event{
		EventType: audit.EventNetworkCreated,
		Scope:     "network",
		TargetID:  &networkID,
		UserIDs:   []primitive.ObjectID{creatorID},
		Success:   true,
		Details:   map[string]string{"name": name},
	})
}

// --- Membership ---

// UsersAssigned records users added to a group or network.
func (l *Logger) UsersAssigned(ctx context.Context, scope string, entityID primitive.ObjectID, userIDs []primitive.ObjectID, modified int64) {
	l.Log(ctx, audit.Event{
		EventType: audit.EventUserAssigned,
		Scope:     scope,
		TargetID:  &entityID,
		UserIDs:   userIDs,
		Success:   true,
		Details:   map[string]string{"modified": strconv.FormatInt(modified, 10)},
	})
}

// UsersUnassigned records users removed from a group or network.
func (l *Logger) UsersUnassigned(ctx context.Context, scope string, entityID primitive.ObjectID, userIDs []primitive.ObjectID, modified int64) {
	l.Log(ctx, audit.Event{
		EventType: audit.EventUserUnassigned,
		Scope:     scope,
		TargetID:  &entityID,
		UserIDs:   userIDs,
		Success:   true,
		Details:   map[string]string{"modified": strconv.FormatInt(modified, 10)},
	})
}

// NetworkManagerSet records a manager change.
func (l *Logger) NetworkManagerSet(ctx context.Context, networkID, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		EventType: audit.EventNetworkManagerSet,
		Scope:     "network",
		TargetID:  &networkID,
		UserIDs:   []primitive.ObjectID{userID},
		Success:   true,
	})
}

// --- Roles ---

// PermissionsGranted records permissions attached to a role.
func (l *Logger) PermissionsGranted(ctx context.Context, roleID primitive.ObjectID, permissionIDs []primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		EventType: audit.EventPermissionsGranted,
		Scope:     "role",
		TargetID:  &roleID,
		Success:   true,
		Details:   map[string]string{"permissions": strconv.Itoa(len(permissionIDs))},
	})
}

// PermissionRevoked records a permission removed from a role.
func (l *Logger) PermissionRevoked(ctx context.Context, roleID, permissionID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		EventType: audit.EventPermissionRevoked,
		Scope:     "role",
		TargetID:  &roleID,
		Success:   true,
		Details:   map[string]string{"permission_id": permissionID.Hex()},
	})
}

// --- Authentication ---

// LoginSucceeded records a password login by userID.
func (l *Logger) LoginSucceeded(ctx context.Context, userID primitive.ObjectID, ip string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   &userID,
		UserIDs:   []primitive.ObjectID{userID},
		Success:   true,
		Details:   map[string]string{"ip": ip},
	})
}

// LoginFailed records a rejected login attempt for login.
func (l *Logger) LoginFailed(ctx context.Context, login, ip, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"login": login, "ip": ip},
	})
}

// LoggedOut records the end of the caller's session.
func (l *Logger) LoggedOut(ctx context.Context) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		Success:   true,
	})
}
