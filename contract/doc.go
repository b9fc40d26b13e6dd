/*
Package contract implements the registry's operations as plain functions over
an explicit state aggregate.

Every operation takes the *storagemodels.State it reads and mutates, plus an
Env holding the collaborators of the call:

	env := contract.Env{
	    Auth:     signers,          // Authorizer: proves the caller acts as an address
	    Payments: ledger,           // PaymentMover: moves royalty payments
	    Events:   &journal,         // NotificationSink: receives mint/transfer notifications
	}
	err := contract.Mint(ctx, env, st, creator, owner, "ipfs://1")

Operations:
  - Initialize records the administrator and creates the empty tables
  - Mint assigns identifiers 1, 2, 3, ... and emits a mint notification
  - Transfer moves an asset from its current owner and emits a transfer notification
  - SetRoyalty overwrites the royalty rate of an identifier
  - PayRoyalty moves amount*rate/100 (truncated) from buyer to creator
  - Get and Royalty read the asset and royalty tables

Check Order:
Authorization is checked first, then initialization, then the referenced
asset. A denied call therefore reports the denial even against an
uninitialized registry.

Atomicity:
Operations validate before they write, but a caller that needs all-or-nothing
behavior across collaborators should run them on State.Clone() and keep the
clone only on success. The root nftregistry package does exactly that.

SetRoyalty does not verify that the authorizing address created the asset, or
that the asset exists. PayRoyalty moves only the royalty cut, never the sale
amount itself.
*/
package contract
