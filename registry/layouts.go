/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import "github.com/suparena/nftregistry/storagemodels"

// EntityType names of the registry's stored types.
const (
	StateEntity        = "RegistryState"
	NotificationEntity = "Notification"
	BalanceEntity      = "Balance"
)

func init() {
	Register[storagemodels.StateDocument](StateEntity, map[string]string{
		"PK": "REGISTRY#{Registry}",
		"SK": "STATE",
	})
	Register[storagemodels.NotificationRecord](NotificationEntity, map[string]string{
		"PK": "REGISTRY#{Registry}#EVENTS",
		"SK": "EVENT#{ID}",
	})
	Register[storagemodels.Balance](BalanceEntity, map[string]string{
		"PK": "BALANCE#{Key}",
		"SK": "BALANCE#{Key}",
	})
}
