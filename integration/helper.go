package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/iyhunko/product-catalog/internal/events"
	httpAPI "github.com/iyhunko/product-catalog/internal/http"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/repository"
	repomongo "github.com/iyhunko/product-catalog/internal/repository/mongo"
	reposql "github.com/iyhunko/product-catalog/internal/repository/sql"
	"github.com/iyhunko/product-catalog/internal/service"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestDB holds the test database connection and cleanup function
type TestDB struct {
	DB       *sql.DB
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// TestMongo holds a MongoDB container and the products collection inside it.
type TestMongo struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	Pool       *dockertest.Pool
	Resource   *dockertest.Resource
}

func newPool(t *testing.T) *dockertest.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	// Create dockertest pool
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Could not connect to docker: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Docker is not available: %s", err)
	}

	// Set max wait time for Docker operations
	pool.MaxWait = 120 * time.Second
	return pool
}

func hostConfig(config *docker.HostConfig) {
	config.AutoRemove = true
	config.RestartPolicy = docker.RestartPolicy{Name: "no"}
}

// SetupTestDB sets up a PostgreSQL container using dockertest and runs migrations
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	pool := newPool(t)

	// Pull and run PostgreSQL container
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, hostConfig)
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	hostAndPort := resource.GetHostPort("5432/tcp")
	databaseURL := fmt.Sprintf("postgres://testuser:secret@%s/testdb?sslmode=disable", hostAndPort)

	log.Println("Connecting to database on url: ", databaseURL)

	// Wait for database to be ready
	var db *sql.DB
	if err = pool.Retry(func() error {
		var err error
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	// Run migrations
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("Could not create migration driver: %s", err)
	}

	// Get the migrations path - go up from integration folder to root
	migrationsPath := "../migrations"
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		t.Fatalf("Migrations directory not found: %s", migrationsPath)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		t.Fatalf("Could not create migrate instance: %s", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("Could not run migrations: %s", err)
	}

	return &TestDB{
		DB:       db,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup closes the database connection and purges the Docker container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	if tdb.DB != nil {
		if err := tdb.DB.Close(); err != nil {
			t.Errorf("Could not close database: %s", err)
		}
	}

	if tdb.Pool != nil && tdb.Resource != nil {
		if err := tdb.Pool.Purge(tdb.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// TruncateTables empties the products table.
func (tdb *TestDB) TruncateTables(t *testing.T) {
	t.Helper()

	if _, err := tdb.DB.ExecContext(context.Background(), "TRUNCATE TABLE products"); err != nil {
		t.Fatalf("Could not truncate table products: %s", err)
	}
}

// SetupTestMongo starts a MongoDB container and prepares the products collection
// through the same StartDB path the API uses.
func SetupTestMongo(t *testing.T) *TestMongo {
	t.Helper()
	pool := newPool(t)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7",
	}, hostConfig)
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	mongoURL := fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp"))
	log.Println("Connecting to MongoDB on url: ", mongoURL)

	var (
		client *mongo.Client
		coll   *mongo.Collection
	)
	if err = pool.Retry(func() error {
		var err error
		client, coll, err = repomongo.StartDB(context.Background(), config.Storage{Driver: config.StorageMongo, MongoURL: mongoURL}, "catalog_test")
		return err
	}); err != nil {
		t.Fatalf("Could not connect to MongoDB: %s", err)
	}

	return &TestMongo{
		Client:     client,
		Collection: coll,
		Pool:       pool,
		Resource:   resource,
	}
}

// Cleanup disconnects and purges the MongoDB container.
func (tm *TestMongo) Cleanup(t *testing.T) {
	t.Helper()

	if tm.Client != nil {
		if err := tm.Client.Disconnect(context.Background()); err != nil {
			t.Errorf("Could not disconnect from MongoDB: %s", err)
		}
	}

	if tm.Pool != nil && tm.Resource != nil {
		if err := tm.Pool.Purge(tm.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// TruncateCollection removes every product document.
func (tm *TestMongo) TruncateCollection(t *testing.T) {
	t.Helper()

	if _, err := tm.Collection.DeleteMany(context.Background(), bson.D{}); err != nil {
		t.Fatalf("Could not clear products collection: %s", err)
	}
}

// backend is one product store under test plus a way to reset it.
type backend struct {
	name  string
	repo  repository.ProductRepository
	reset func(t *testing.T)
}

// setupBackends starts every container-backed product store.
func setupBackends(t *testing.T) []backend {
	t.Helper()

	testDB := SetupTestDB(t)
	t.Cleanup(func() { testDB.Cleanup(t) })

	testMongo := SetupTestMongo(t)
	t.Cleanup(func() { testMongo.Cleanup(t) })

	return []backend{
		{name: "postgres", repo: reposql.NewProductRepository(testDB.DB), reset: testDB.TruncateTables},
		{name: "mongo", repo: repomongo.NewProductRepository(testMongo.Collection), reset: testMongo.TruncateCollection},
	}
}

func newRouter(repo repository.ProductRepository, publisher events.Publisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	productService := service.NewProductService(repo, publisher)
	return httpAPI.InitRouter(gin.New(), controller.New(productService), controller.NewProductController(productService))
}
