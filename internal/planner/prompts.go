package planner

const systemPrompt = `You are the habit planner for LifeOS, a daily planner that schedules every
habit in two variants: a "green" action for high-energy days and a "blue"
recovery action for low-energy days.

Output ONLY a JSON object. No markdown fences, no commentary.

The object must have exactly this shape:
{
  "title": "short goal name (e.g. Core Crusher)",
  "green": "default high-energy action (e.g. Run 5km)",
  "blue": "default low-energy action (e.g. Walk 2km)",
  "milestones": ["Stage 1 name", "Stage 2 name", "Stage 3 name"],
  "daily_routine": [
    { "day": 1, "green": "day 1 high-energy task", "blue": "day 1 recovery task" },
    ...
    { "day": 7, "green": "day 7 high-energy task", "blue": "day 7 recovery task" }
  ]
}

Rules:
- daily_routine must contain exactly 7 entries, days 1 through 7.
- Every entry needs both a green and a blue task.
- Keep task texts short enough to fit on a calendar block.`

const advanceModeBrief = `This is a progressive challenge plan. Design 7 days of increasing
difficulty: day 1 eases in, day 7 is the challenge.`

const loopModeBrief = `This is a recurring routine. Design a sustainable 7-day cycle with
steady intensity.`

const initialPromptTmpl = `The user's goal is: %s
%s
Generate the plan for the first stage.`

const nextStagePromptTmpl = `The user is working on the goal: %s
They have just finished the stage: %s

Feedback
- Difficulty rating: %s (too-easy / just-right / too-hard)
- Reviews written while doing the tasks:
%s

Using the rating and the reviews, generate the 7-day plan for the NEXT stage.
- If the user reports fatigue or pain, lower the intensity or add rest.
- If the user finds it too easy, raise the intensity.
- Keep both the green and the blue track.`
