// Package cart mirrors the signed-in user's server-side cart.
//
// The backend is the source of truth. Every mutation is followed by a full
// refetch and the displayed total is always the one the backend reported;
// nothing is patched locally. The store follows the session: signing in
// fetches the cart in the background and signing out empties it at once
// without a backend call. A fetch that completes after the cart was cleared
// is discarded, so one user's lines never reappear for the next.
//
// Overlapping mutations are not serialized. Whichever refetch response
// arrives last becomes the displayed cart.
//
//	c, err := cart.New(api, sess)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	if err := c.AddItem(ctx, productID, 2); err != nil {
//		return err
//	}
//	fmt.Println(c.ItemCount(), c.FormattedTotal()) // 2 $39.98
package cart
