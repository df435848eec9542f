package client

const (
	endpointHealth      = "/health"
	endpointDietChat    = "/diet-chat"
	endpointFoodSearch  = "/food-search"
	endpointMessages    = "/messages"
	endpointMeals       = "/meals"
	endpointMealByID    = "/meals/%s"
	endpointWeeklyStats = "/stats/weekly"
)
