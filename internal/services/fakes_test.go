package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
)

// In-memory repositories shared by the service tests. Executors are ignored.

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(fn func(tx repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]models.User{}}
}

func (r *fakeUserRepo) add(role, name string) *models.User {
	u := &models.User{Username: strings.ToLower(strings.ReplaceAll(name, " ", ".")), FullName: name, Role: role, IsActive: true}
	r.CreateUser(nil, u)
	return u
}

func (r *fakeUserRepo) CreateUser(_ repositories.SQLExecutor, user *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, user.Username) {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) FindUserByID(id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u.PasswordHash = ""
	return &u, nil
}

func (r *fakeUserRepo) FindUserByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUsers(filters models.UserFilters) ([]models.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, u := range r.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) UpdateUser(_ repositories.SQLExecutor, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.PasswordHash = old.PasswordHash
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ repositories.SQLExecutor, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = hash
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) DeleteUser(_ repositories.SQLExecutor, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeVehicleRepo struct {
	mu       sync.Mutex
	nextID   int64
	vehicles map[int64]models.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: map[int64]models.Vehicle{}}
}

func (r *fakeVehicleRepo) add(customerID int64, plate string) *models.Vehicle {
	v := &models.Vehicle{CustomerID: customerID, PlateNumber: models.NormalizePlate(plate), CarBrand: "Toyota"}
	r.CreateVehicle(nil, v)
	return v
}

func (r *fakeVehicleRepo) CreateVehicle(_ repositories.SQLExecutor, v *models.Vehicle) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.vehicles {
		if existing.CustomerID == v.CustomerID && existing.PlateNumber == v.PlateNumber {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	v.ID = r.nextID
	r.vehicles[v.ID] = *v
	return v.ID, nil
}

func (r *fakeVehicleRepo) GetVehicleByID(_ repositories.SQLExecutor, id int64) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &v, nil
}

func (r *fakeVehicleRepo) GetVehicleByCustomerAndPlate(_ repositories.SQLExecutor, customerID int64, plate string) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vehicles {
		if v.CustomerID == customerID && v.PlateNumber == plate {
			return &v, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeVehicleRepo) GetVehicles(filters models.VehicleFilters) ([]models.Vehicle, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Vehicle{}
	for _, v := range r.vehicles {
		if filters.CustomerID != nil && v.CustomerID != *filters.CustomerID {
			continue
		}
		out = append(out, v)
	}
	return out, len(out), nil
}

func (r *fakeVehicleRepo) UpdateVehicle(_ repositories.SQLExecutor, v *models.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[v.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.vehicles[v.ID] = *v
	return nil
}

func (r *fakeVehicleRepo) DeleteVehicle(_ repositories.SQLExecutor, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.vehicles, id)
	return nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]models.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[int64]models.Category{}}
}

func (r *fakeCategoryRepo) add(name string, price int64, washType string) *models.Category {
	c := &models.Category{Name: name, Price: decimal.NewFromInt(price), WashType: washType}
	r.CreateCategory(nil, c)
	return c
}

func (r *fakeCategoryRepo) washType(id int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.categories[id].WashType
}

func (r *fakeCategoryRepo) CreateCategory(_ repositories.SQLExecutor, c *models.Category) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	r.categories[c.ID] = *c
	return c.ID, nil
}

func (r *fakeCategoryRepo) GetCategoryByID(_ repositories.SQLExecutor, id int64) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCategoryRepo) GetCategories(washType *string) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Category{}
	for _, c := range r.categories {
		if washType != nil && c.WashType != *washType {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) UpdateCategory(_ repositories.SQLExecutor, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.categories[c.ID] = *c
	return nil
}

func (r *fakeCategoryRepo) DeleteCategory(_ repositories.SQLExecutor, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

type fakeMembershipRepo struct {
	mu          sync.Mutex
	nextID      int64
	memberships []models.Membership
}

func (r *fakeMembershipRepo) add(vehicleID int64, tier models.Tier, start, end string) *models.Membership {
	m := &models.Membership{VehicleID: vehicleID, Tier: tier, StartsAt: mustDate(start), EndsAt: mustDate(end), DurationMonths: 1}
	r.CreateMembership(nil, m)
	return m
}

func (r *fakeMembershipRepo) CreateMembership(_ repositories.SQLExecutor, m *models.Membership) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	r.memberships = append(r.memberships, *m)
	return m.ID, nil
}

func (r *fakeMembershipRepo) GetMembershipByID(_ repositories.SQLExecutor, id int64) (*models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeMembershipRepo) byVehicle(vehicleID int64) []models.Membership {
	out := []models.Membership{}
	for _, m := range r.memberships {
		if m.VehicleID == vehicleID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartsAt.After(out[j].StartsAt)
	})
	return out
}

func (r *fakeMembershipRepo) FindActiveMembership(_ repositories.SQLExecutor, vehicleID int64, ref time.Time) (*models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byVehicle(vehicleID) {
		if !m.EndsAt.Before(ref) {
			return &m, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeMembershipRepo) GetMembershipsByVehicle(_ repositories.SQLExecutor, vehicleID int64) ([]models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byVehicle(vehicleID), nil
}

func (r *fakeMembershipRepo) GetMemberships(filters models.MembershipFilters) ([]models.Membership, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Membership{}
	for _, m := range r.memberships {
		if filters.VehicleID != nil && m.VehicleID != *filters.VehicleID {
			continue
		}
		out = append(out, m)
	}
	return out, len(out), nil
}

func (r *fakeMembershipRepo) UpdateMembershipEndsAt(_ repositories.SQLExecutor, id int64, endsAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.memberships {
		if r.memberships[i].ID == id {
			r.memberships[i].EndsAt = endsAt
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeMembershipRepo) DeleteMembership(_ repositories.SQLExecutor, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.memberships {
		if r.memberships[i].ID == id {
			r.memberships = append(r.memberships[:i], r.memberships[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeTransactionRepo struct {
	mu           sync.Mutex
	nextID       int64
	transactions map[int64]models.Transaction
	categories   *fakeCategoryRepo
	lockCalls    int
}

func newFakeTransactionRepo(categories *fakeCategoryRepo) *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: map[int64]models.Transaction{}, categories: categories}
}

// seed stores a historical transaction directly, bypassing pricing.
func (r *fakeTransactionRepo) seed(trx models.Transaction) int64 {
	if trx.Status == "" {
		trx.Status = models.StatusDone
	}
	id, _ := r.CreateTransaction(nil, &trx)
	return id
}

func (r *fakeTransactionRepo) CreateTransaction(_ repositories.SQLExecutor, trx *models.Transaction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	trx.ID = r.nextID
	r.transactions[trx.ID] = *trx
	return trx.ID, nil
}

func (r *fakeTransactionRepo) GetTransactionByID(_ repositories.SQLExecutor, id int64) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTransactionRepo) GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Transaction{}
	for _, t := range r.transactions {
		if filters.CustomerID != nil && (t.CustomerID == nil || *t.CustomerID != *filters.CustomerID) {
			continue
		}
		if filters.Status != nil && *filters.Status != "" && t.Status != *filters.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeTransactionRepo) UpdateTransaction(_ repositories.SQLExecutor, trx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[trx.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.transactions[trx.ID] = *trx
	return nil
}

func (r *fakeTransactionRepo) UpdateTransactionStatus(_ repositories.SQLExecutor, id int64, status string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = updatedAt
	r.transactions[id] = t
	return nil
}

func (r *fakeTransactionRepo) DeleteTransaction(_ repositories.SQLExecutor, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.transactions, id)
	return nil
}

func (r *fakeTransactionRepo) CountHistory(_ repositories.SQLExecutor, f models.HistoryFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.transactions {
		if t.CustomerID == nil || *t.CustomerID != f.CustomerID || t.PlateNumber != f.PlateNumber {
			continue
		}
		if t.TrxDate.After(f.To) || (f.From != nil && t.TrxDate.Before(*f.From)) {
			continue
		}
		if len(f.WashTypes) > 0 && !containsString(f.WashTypes, r.categories.washType(t.CategoryID)) {
			continue
		}
		if f.IsMembershipQuotaFree != nil && t.IsMembershipQuotaFree != *f.IsMembershipQuotaFree {
			continue
		}
		if f.IsRainGuaranteeFree != nil && t.IsRainGuaranteeFree != *f.IsRainGuaranteeFree {
			continue
		}
		if f.ExcludeTransactionID != nil && t.ID == *f.ExcludeTransactionID {
			continue
		}
		count++
	}
	return count, nil
}

func (r *fakeTransactionRepo) LockCustomerPlate(_ repositories.SQLExecutor, _ int64, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lockCalls++
	return nil
}

func (r *fakeTransactionRepo) all() []models.Transaction {
	out, _, _ := r.GetTransactions(models.TransactionFilters{})
	return out
}

type fakePointRepo struct {
	mu      sync.Mutex
	nextID  int64
	entries map[int64]models.PointEntry // by transaction id
}

func newFakePointRepo() *fakePointRepo {
	return &fakePointRepo{entries: map[int64]models.PointEntry{}}
}

func (r *fakePointRepo) CreatePointEntry(_ repositories.SQLExecutor, e *models.PointEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.TransactionID]; ok {
		return 0, repositories.ErrDuplicateKey
	}
	r.nextID++
	e.ID = r.nextID
	r.entries[e.TransactionID] = *e
	return e.ID, nil
}

func (r *fakePointRepo) GetPointEntryByTransactionID(trxID int64) (*models.PointEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[trxID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &e, nil
}

func (r *fakePointRepo) ExistsForTransaction(_ repositories.SQLExecutor, trxID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[trxID]
	return ok, nil
}

func (r *fakePointRepo) DeleteByTransactionID(_ repositories.SQLExecutor, trxID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[trxID]; !ok {
		return 0, nil
	}
	delete(r.entries, trxID)
	return 1, nil
}

func (r *fakePointRepo) GetActiveEntries(customerID int64, asOf time.Time) ([]models.PointEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.PointEntry{}
	for _, e := range r.entries {
		if e.CustomerID == customerID && !e.IsExpiredOn(asOf) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePointRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func mustDate(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func int64Ptr(v int64) *int64 { return &v }

// carWash bundles the fakes and the services built on them.
type carWash struct {
	users       *fakeUserRepo
	vehicles    *fakeVehicleRepo
	categories  *fakeCategoryRepo
	memberships *fakeMembershipRepo
	trxs        *fakeTransactionRepo
	points      *fakePointRepo

	resolver  MembershipResolver
	engine    PricingEngine
	ledger    PointsLedger
	trxSvc    TransactionService
	memberSvc MembershipService
}

func newCarWash() *carWash {
	w := &carWash{
		users:       newFakeUserRepo(),
		vehicles:    newFakeVehicleRepo(),
		categories:  newFakeCategoryRepo(),
		memberships: &fakeMembershipRepo{},
		points:      newFakePointRepo(),
	}
	w.trxs = newFakeTransactionRepo(w.categories)
	w.resolver = NewMembershipResolver(w.memberships)
	w.engine = NewPricingEngine(w.resolver, w.trxs)
	w.ledger = NewPointsLedger(w.points, w.vehicles, w.resolver)
	w.trxSvc = NewTransactionService(w.trxs, w.categories, w.vehicles, w.users, w.engine, w.ledger, fakeTransactor{}, nil)
	w.memberSvc = NewMembershipService(w.memberships, w.vehicles, w.resolver, fakeTransactor{}, nil)
	return w
}
