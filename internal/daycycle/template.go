package daycycle

const instructionsPage = "/DETAILED_CORE_PROGRAM.html"

var (
	coreWorkout = Activity{
		ID:       "core",
		Name:     "Core Workout",
		Time:     clock(5, 15),
		Duration: "15 min",
		Details:  "Dead Bug, Glute Bridge, Side Plank, Bird Dog",
		Link:     instructionsPage + "#core-workout",
	}
	lunchReset = Activity{
		ID:       "lunch",
		Name:     "Lunch Desk Reset",
		Time:     clock(12, 0),
		Duration: "5-8 min",
		Details:  "Pelvic Tilts, Hip Flexor, Upper-Back Extension",
		Link:     instructionsPage + "#daily-desk-reset",
	}
	afternoonReset = Activity{
		ID:       "afternoon",
		Name:     "Afternoon Desk Reset",
		Time:     clock(15, 0),
		Duration: "5-8 min",
		Details:  "Pelvic Tilts, Hip Flexor, Upper-Back Extension",
		Link:     instructionsPage + "#daily-desk-reset",
	}
)

// DefaultWeeklyTemplate returns the 12-week program schedule. Every call
// returns a fresh copy, so callers cannot alter each other's template.
func DefaultWeeklyTemplate() WeeklyTemplate {
	return WeeklyTemplate{
		Monday: {coreWorkout, lunchReset, afternoonReset},
		Tuesday: {
			{
				ID:       "run",
				Name:     "Beach/Sand Running",
				Time:     clock(5, 15),
				Duration: "20-30 min",
				Details:  "Packed sand, easy pace, midfoot landing - Run both directions",
				Link:     instructionsPage + "#running-protocol",
			},
			lunchReset,
			afternoonReset,
		},
		Wednesday: {
			lunchReset,
			afternoonReset,
			{
				ID:       "gym",
				Name:     "Gym Workout",
				Time:     clock(18, 0),
				Duration: "45-60 min",
				Details:  "Leg Press, Cable Row, Goblet Squat, Back Extension",
				Link:     instructionsPage + "#gym-workout",
			},
		},
		Thursday: {coreWorkout, lunchReset, afternoonReset},
		Friday: {
			lunchReset,
			afternoonReset,
			{
				ID:       "mobility",
				Name:     "Mobility & Stretching",
				Time:     clock(19, 0),
				Duration: "12 min",
				Details:  "Cat-Cow, Child's Pose, Knees-to-Chest",
				Link:     instructionsPage + "#mobility-stretching",
			},
		},
		Saturday: {
			{
				ID:       "run",
				Name:     "Beach/Sand Running (Flexible)",
				Time:     clock(9, 0),
				Duration: "20-30 min",
				Details:  "Packed or soft sand, easy pace - Do anytime today",
				Link:     instructionsPage + "#running-protocol",
			},
			{
				ID:       "gym",
				Name:     "Gym Workout (Flexible)",
				Time:     clock(10, 0),
				Duration: "45-60 min",
				Details:  "Leg Press, Cable Row, Goblet Squat - Do anytime today",
				Link:     instructionsPage + "#gym-workout",
			},
		},
		Sunday: {
			{
				ID:       "mobility",
				Name:     "Mobility & Stretching (Optional)",
				Time:     clock(10, 0),
				Duration: "12 min",
				Details:  "Light stretching - Do if you feel like it",
				Link:     instructionsPage + "#mobility-stretching",
			},
		},
	}
}
