package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	adapterrepo "tokoaing/internal/adapter/repository"
	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/internal/domain/service"
	"tokoaing/internal/infrastructure/memtree"
)

var fixedNow = time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

type store struct {
	tree     *memtree.Tree
	accounts repository.AccountRepository
	products repository.ProductRepository
	tickets  repository.TicketRepository
	orders   repository.OrderRepository
	logs     repository.OrderLogRepository
	inbox    repository.InboxRepository
	boxes    repository.MysteryBoxRepository
	board    repository.LeaderboardRepository

	orderUC       *OrderUseCase
	fulfillmentUC *FulfillmentUseCase
	ticketUC      *TicketUseCase
	boxUC         *MysteryBoxUseCase
	inboxUC       *InboxUseCase
	historyUC     *HistoryUseCase
}

func newStore(t *testing.T) *store {
	t.Helper()

	tree := memtree.New()
	s := &store{
		tree:     tree,
		accounts: adapterrepo.NewTreeAccountRepository(tree),
		products: adapterrepo.NewTreeProductRepository(tree),
		tickets:  adapterrepo.NewTreeTicketRepository(tree),
		orders:   adapterrepo.NewTreeOrderRepository(tree),
		logs:     adapterrepo.NewMemoryOrderLogRepository(),
		inbox:    adapterrepo.NewTreeInboxRepository(tree),
		boxes:    adapterrepo.NewTreeMysteryBoxRepository(tree),
		board:    adapterrepo.NewTreeLeaderboardRepository(tree),
	}

	clock := func() time.Time { return fixedNow }
	payments := service.NewPaymentLinkService("https://pay.example/product", "https://pay.example/ticket", "https://pay.example/box")

	s.orderUC = NewOrderUseCase(s.orders, s.products, s.tickets, payments, 50000)
	s.orderUC.now = clock
	s.fulfillmentUC = NewFulfillmentUseCase(tree, s.accounts, s.products, s.logs)
	s.fulfillmentUC.now = clock
	s.ticketUC = NewTicketUseCase(tree, s.tickets)
	s.ticketUC.now = clock
	s.boxUC = NewMysteryBoxUseCase(tree, s.boxes, s.accounts, s.orders)
	s.boxUC.now = clock
	s.inboxUC = NewInboxUseCase(tree, s.inbox)
	s.historyUC = NewHistoryUseCase(s.orders)
	return s
}

func (s *store) addAccount(t *testing.T, uid, email string) Actor {
	t.Helper()
	require.NoError(t, s.accounts.Create(context.Background(), &entity.Account{
		UID:   uid,
		Email: email,
		Role:  entity.RoleUser,
	}))
	return Actor{UID: uid, Email: email}
}

func (s *store) addProduct(t *testing.T, name string, price float64, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{Name: name, Price: price, Stock: stock, IsAvailable: true}
	require.NoError(t, s.products.Create(context.Background(), p))
	return p
}

func (s *store) addTicket(t *testing.T, name string, price float64) *entity.Ticket {
	t.Helper()
	tk := &entity.Ticket{Name: name, Price: price, IsAvailable: true}
	require.NoError(t, s.tickets.Create(context.Background(), tk))
	return tk
}

func (s *store) place(t *testing.T, actor Actor, itemType entity.ItemType, itemID string) *entity.PendingOrder {
	t.Helper()
	placed, err := s.orderUC.PlaceOrder(context.Background(), actor, PlaceOrderInput{Type: itemType, ItemID: itemID})
	require.NoError(t, err)
	return placed.Order
}

func (s *store) account(t *testing.T, uid string) *entity.Account {
	t.Helper()
	a, err := s.accounts.GetByID(context.Background(), uid)
	require.NoError(t, err)
	return a
}

func (s *store) inboxOf(t *testing.T, uid string, kind entity.InboxKind) []*entity.InboxItem {
	t.Helper()
	items, err := s.inbox.List(context.Background(), uid, kind)
	require.NoError(t, err)
	return items
}

// gatedTree parks every Update until release is closed, so a second caller can run while
// the first is mid-transition.
type gatedTree struct {
	*memtree.Tree
	entered chan struct{}
	release chan struct{}
}

func newGatedTree(tree *memtree.Tree) *gatedTree {
	return &gatedTree{Tree: tree, entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gatedTree) Update(ctx context.Context, batch repository.Batch) error {
	g.entered <- struct{}{}
	<-g.release
	return g.Tree.Update(ctx, batch)
}

func (g *gatedTree) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(time.Second):
		t.Fatal("update never started")
	}
}
