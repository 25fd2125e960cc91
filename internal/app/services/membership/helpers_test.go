package membership

import userstore "github.com/dalemusser/accesshub/internal/app/store/users"

var groupScopeForTest = userstore.GroupScope
