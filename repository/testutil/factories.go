package testutil

import (
	"harvester/models"
)

// TestUserRef builds a UserRef for command-level calls
func TestUserRef(id int64, username string) models.UserRef {
	return models.UserRef{ID: id, Username: username}
}

// CreateTestDeposit builds a solo deposit with the conversion already applied
func CreateTestDeposit(userID int64, username string, sandAmount int64) *models.Deposit {
	melange := sandAmount / 50
	rate := 50.0
	return &models.Deposit{
		UserID:         userID,
		Username:       username,
		SandAmount:     sandAmount,
		Type:           models.DepositTypeSolo,
		MelangeAmount:  &melange,
		ConversionRate: &rate,
	}
}

// CreateTestExpedition builds an expedition record for a distribution test
func CreateTestExpedition(initiatorID int64, username string, totalSand int64) *models.Expedition {
	return &models.Expedition{
		InitiatorID:       initiatorID,
		InitiatorUsername: username,
		TotalSand:         totalSand,
		SandPerMelange:    50,
	}
}

// CreateTestParticipant builds one participant allocation row
func CreateTestParticipant(expeditionID, userID int64, username string, sand, melange int64) *models.ExpeditionParticipant {
	return &models.ExpeditionParticipant{
		ExpeditionID:  expeditionID,
		UserID:        userID,
		Username:      username,
		SandAmount:    sand,
		MelangeAmount: melange,
	}
}

// CreateTestGuildTransaction builds a treasury audit row
func CreateTestGuildTransaction(txnType models.GuildTransactionType, sand, melange, adminID int64) *models.GuildTransaction {
	return &models.GuildTransaction{
		Type:          txnType,
		SandAmount:    sand,
		MelangeAmount: melange,
		AdminUserID:   adminID,
		AdminUsername: "admin",
	}
}
