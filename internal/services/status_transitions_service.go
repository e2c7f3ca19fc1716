package services

import "propertystore/internal/models"

// Допустимые переходы статусов заявки. completed — финальный.
var RequestTransitions = map[models.RequestStatus]map[models.RequestStatus]bool{
	models.RequestNew:        {models.RequestInProgress: true, models.RequestCompleted: true},
	models.RequestInProgress: {models.RequestCompleted: true},
	models.RequestCompleted:  {},
}

func canTransition(current, to models.RequestStatus) bool {
	nexts, ok := RequestTransitions[current]
	if !ok {
		return false
	}
	return nexts[to]
}
