package services

import (
	"testing"

	"moneta/internal/events"
	"moneta/internal/models"
	"moneta/internal/testutil"

	"gorm.io/gorm"
)

// testDB wraps the test database with lookup helpers.
type testDB struct {
	*gorm.DB
}

func (d *testDB) getUser(t *testing.T, id string) *models.User {
	t.Helper()
	var user models.User
	if err := d.Where("id = ?", id).First(&user).Error; err != nil {
		t.Fatalf("failed to load user %s: %v", id, err)
	}
	return &user
}

func (d *testDB) getCategory(t *testing.T, id string) *models.Category {
	t.Helper()
	var category models.Category
	if err := d.Where("id = ?", id).First(&category).Error; err != nil {
		t.Fatalf("failed to load category %s: %v", id, err)
	}
	return &category
}

// serviceGraph wires the full service dependency graph over one test
// database with event publishing disabled.
type serviceGraph struct {
	db           *testDB
	users        UserServicer
	categories   CategoryServicer
	transactions TransactionServicer
	recurring    RecurringServicer
	analytics    AnalyticsServicer
}

func newServiceGraph(t *testing.T) *serviceGraph {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	categories := NewCategoryService(db)
	users := NewUserService(db, categories)
	transactions := NewTransactionService(db, categories, users, events.NopPublisher{})
	recurring := NewRecurringService(db, transactions, categories, users, events.NopPublisher{})
	analytics := NewAnalyticsService(db)

	return &serviceGraph{
		db:           &testDB{db},
		users:        users,
		categories:   categories,
		transactions: transactions,
		recurring:    recurring,
		analytics:    analytics,
	}
}

// registerUser creates a user through the service so default categories
// are seeded like in production.
func (g *serviceGraph) registerUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := g.users.CreateUser(email, "password123", "", "", "USD")
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	return user
}

// findCategory returns one of the user's categories by name.
func (g *serviceGraph) findCategory(t *testing.T, userID, name string) *models.Category {
	t.Helper()
	var category models.Category
	if err := g.db.Where("user_id = ? AND name = ?", userID, name).First(&category).Error; err != nil {
		t.Fatalf("failed to find category %q: %v", name, err)
	}
	return &category
}
