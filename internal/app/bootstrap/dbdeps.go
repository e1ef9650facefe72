// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/system/notify"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// DBDeps holds database/back-end dependencies for the app.
// Optional clients are nil when their setting is blank.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	SQL           *gorm.DB
	Redis         *redis.Client
	Publisher     notify.Publisher

	// Backend is the store selected by data_backend.
	Backend backend.Backend
}
