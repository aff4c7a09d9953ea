package ethcontract

// authorityABI covers the slice of the EduToken contract the client uses:
// the ERC-20 views, the owner check, the reward category table, and the
// submission lifecycle.
const authorityABI = `[
  {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"getRewardAmount","stateMutability":"view","inputs":[{"name":"category","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"setRewardCategory","stateMutability":"nonpayable","inputs":[{"name":"category","type":"string"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"submitAchievement","stateMutability":"nonpayable","inputs":[{"name":"achievementType","type":"string"},{"name":"description","type":"string"},{"name":"proofLink","type":"string"}],"outputs":[]},
  {"type":"function","name":"redeemTokens","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"},{"name":"benefit","type":"string"}],"outputs":[]},
  {"type":"function","name":"getTeacherSubmissions","stateMutability":"view","inputs":[{"name":"teacher","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getAchievementHistory","stateMutability":"view","inputs":[{"name":"teacher","type":"address"}],"outputs":[{"name":"","type":"string[]"}]},
  {"type":"function","name":"getTotalRewards","stateMutability":"view","inputs":[{"name":"teacher","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"issueReward","stateMutability":"nonpayable","inputs":[{"name":"teacher","type":"address"},{"name":"achievementType","type":"string"}],"outputs":[]},
  {"type":"function","name":"issueCustomReward","stateMutability":"nonpayable","inputs":[{"name":"teacher","type":"address"},{"name":"amount","type":"uint256"},{"name":"description","type":"string"}],"outputs":[]},
  {"type":"function","name":"approveSubmission","stateMutability":"nonpayable","inputs":[{"name":"submissionId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"rejectSubmission","stateMutability":"nonpayable","inputs":[{"name":"submissionId","type":"uint256"},{"name":"reason","type":"string"}],"outputs":[]},
  {"type":"function","name":"revokeReward","stateMutability":"nonpayable","inputs":[{"name":"submissionId","type":"uint256"},{"name":"reason","type":"string"}],"outputs":[]},
  {"type":"function","name":"revokeCustomAmount","stateMutability":"nonpayable","inputs":[{"name":"teacher","type":"address"},{"name":"amount","type":"uint256"},{"name":"reason","type":"string"}],"outputs":[]},
  {"type":"function","name":"submissionCounter","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getPendingCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getPendingSubmissions","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getSubmission","stateMutability":"view","inputs":[{"name":"submissionId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[
    {"name":"id","type":"uint256"},
    {"name":"teacher","type":"address"},
    {"name":"achievementType","type":"string"},
    {"name":"description","type":"string"},
    {"name":"proofLink","type":"string"},
    {"name":"submittedAt","type":"uint256"},
    {"name":"status","type":"uint8"},
    {"name":"rejectionReason","type":"string"},
    {"name":"reviewedAt","type":"uint256"}
  ]}]},
  {"type":"function","name":"getAllPendingSubmissions","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple[]","components":[
    {"name":"id","type":"uint256"},
    {"name":"teacher","type":"address"},
    {"name":"achievementType","type":"string"},
    {"name":"description","type":"string"},
    {"name":"proofLink","type":"string"},
    {"name":"submittedAt","type":"uint256"},
    {"name":"status","type":"uint8"},
    {"name":"rejectionReason","type":"string"},
    {"name":"reviewedAt","type":"uint256"}
  ]}]}
]`
