package gate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiporg/libpoip-go/custody"
	"github.com/poiporg/libpoip-go/identity"
	"github.com/poiporg/libpoip-go/ledger"
)

// buyN runs n distinct buyers through the purchase flow.
func (env *testEnv) buyN(t *testing.T, contentID identity.ID, n int) []*Engine {
	t.Helper()
	buyers := make([]*Engine, n)
	for i := range buyers {
		kp, err := identity.Generate()
		require.NoError(t, err)
		b := New(env.ledger, env.store, custody.NewClient(), kp)
		b.DefaultCustodyURL = env.buyer.DefaultCustodyURL
		_, err = b.Purchase(context.Background(), contentID)
		require.NoError(t, err)
		buyers[i] = b
	}
	return buyers
}

func TestWithdraw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pub := env.publish(t, []byte("x"), &TermsOpts{
		SettlementAsset: settlementAsset(t), UnitPrice: 100, GoalCount: 2,
	})
	env.buyN(t, pub.ContentID, 3)

	res, err := env.publisher.Withdraw(ctx, pub.ContentID)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), res.Amount)

	// Everything withdrawn; a second withdrawal has nothing to move.
	_, err = env.publisher.Withdraw(ctx, pub.ContentID)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)
}

func TestWithdrawRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	pub := env.publish(t, []byte("x"), &TermsOpts{
		SettlementAsset: settlementAsset(t), UnitPrice: 100, GoalCount: 1,
	})

	_, err := env.buyer.Withdraw(context.Background(), pub.ContentID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestClaimBonus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// price 100, goal 5, 10 sold: each buyer's share is (10-5)*100/10 = 50.
	pub := env.publish(t, []byte("x"), &TermsOpts{
		SettlementAsset: settlementAsset(t), UnitPrice: 100, GoalCount: 5,
	})
	buyers := env.buyN(t, pub.ContentID, 10)

	res, err := buyers[0].ClaimBonus(ctx, pub.ContentID)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), res.Amount)

	// The share is claimed; claiming again yields nothing.
	_, err = buyers[0].ClaimBonus(ctx, pub.ContentID)
	assert.ErrorIs(t, err, ErrNothingToClaim)
}

func TestClaimBonusUnderGoal(t *testing.T) {
	env := newTestEnv(t)

	pub := env.publish(t, []byte("x"), &TermsOpts{
		SettlementAsset: settlementAsset(t), UnitPrice: 100, GoalCount: 5,
	})
	buyers := env.buyN(t, pub.ContentID, 3)

	_, err := buyers[0].ClaimBonus(context.Background(), pub.ContentID)
	assert.ErrorIs(t, err, ErrNothingToClaim)
}

func TestClaimBonusWithoutPurchase(t *testing.T) {
	env := newTestEnv(t)

	pub := env.publish(t, []byte("x"), &TermsOpts{
		SettlementAsset: settlementAsset(t), UnitPrice: 100, GoalCount: 1,
	})
	env.buyN(t, pub.ContentID, 2)

	// env.buyer never purchased.
	_, err := env.buyer.ClaimBonus(context.Background(), pub.ContentID)
	assert.ErrorIs(t, err, ErrNoPaymentRecord)
}

func TestListPublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gated := env.publish(t, []byte("gated"), &TermsOpts{
		SettlementAsset: settlementAsset(t), UnitPrice: 100, GoalCount: 2,
	})
	free, err := env.publisher.Publish(ctx, &PublishOpts{
		Plaintext: []byte("free"), Title: "Free", Filename: "f.bin",
		Tier: ledger.TierPublic,
	})
	require.NoError(t, err)
	env.custody.register(free.ContentID, free.Bundle)

	env.buyN(t, gated.ContentID, 3)

	items, err := env.publisher.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[string]*PublishedItem{}
	for _, item := range items {
		byID[item.Record.ContentID.String()] = item
	}

	gatedItem := byID[gated.ContentID.String()]
	require.NotNil(t, gatedItem)
	require.NotNil(t, gatedItem.Terms)
	assert.Equal(t, uint64(300), gatedItem.Withdrawable)
	assert.Equal(t, uint64(33), gatedItem.PotentialBonus) // (3-2)*100/3

	freeItem := byID[free.ContentID.String()]
	require.NotNil(t, freeItem)
	assert.Nil(t, freeItem.Terms)
	assert.Zero(t, freeItem.Withdrawable)

	// The buyer published nothing.
	items, err = env.buyer.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListPurchases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pub := env.publish(t, []byte("x"), &TermsOpts{
		SettlementAsset: settlementAsset(t), UnitPrice: 100, GoalCount: 1,
	})

	_, err := env.buyer.Purchase(ctx, pub.ContentID)
	require.NoError(t, err)
	env.buyN(t, pub.ContentID, 1) // push the sale over its goal

	items, err := env.buyer.ListPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Record)
	assert.True(t, items[0].Payment.ContentID.Equal(pub.ContentID))
	assert.Equal(t, uint64(50), items[0].ClaimableBonus) // (2-1)*100/2

	// Deleting the content keeps the payment row, record becomes nil.
	_, err = env.publisher.Delete(ctx, pub.ContentID)
	require.NoError(t, err)

	items, err = env.buyer.ListPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Record)
}
